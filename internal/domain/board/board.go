package board

import (
	"encoding/json"
	"fmt"
	"strings"

	errs "senti_ttt/internal/errors"
)

const Size = 9

// NoMove marks the absence of a position.
const NoMove = -1

type Cell int8

const (
	Empty Cell = iota
	PlayerX
	PlayerO
)

func (c Cell) Opponent() Cell {
	switch c {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return Empty
	}
}

func (c Cell) IsPlayer() bool {
	return c == PlayerX || c == PlayerO
}

func (c Cell) String() string {
	switch c {
	case PlayerX:
		return "X"
	case PlayerO:
		return "O"
	default:
		return ""
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Empty
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMalformedBoard, err)
	}
	parsed, err := ParseCell(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCell accepts "X", "O" and "" (empty), case-insensitive.
func ParseCell(s string) (Cell, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return Empty, nil
	case "X":
		return PlayerX, nil
	case "O":
		return PlayerO, nil
	default:
		return Empty, fmt.Errorf("%w: unknown cell value %q", errs.ErrMalformedBoard, s)
	}
}

// ParsePlayer is ParseCell restricted to the two players.
func ParsePlayer(s string) (Cell, error) {
	c, err := ParseCell(s)
	if err != nil {
		return Empty, err
	}
	if !c.IsPlayer() {
		return Empty, fmt.Errorf("%w: player must be X or O", errs.ErrMalformedBoard)
	}
	return c, nil
}

// Board is an immutable value; every transformation returns a copy.
type Board [Size]Cell

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func Lines() [8][3]int {
	return lines
}

// FromCells builds a board from the tri-state wire representation
// (nil, "X", "O"). Anything but exactly nine valid values is rejected.
func FromCells(cells []*string) (Board, error) {
	var b Board
	if len(cells) != Size {
		return b, fmt.Errorf("%w: board must have %d cells, got %d", errs.ErrMalformedBoard, Size, len(cells))
	}
	for i, raw := range cells {
		if raw == nil {
			continue
		}
		c, err := ParseCell(*raw)
		if err != nil {
			return b, err
		}
		if c == Empty {
			return b, fmt.Errorf("%w: cell %d must be null, \"X\" or \"O\"", errs.ErrMalformedBoard, i)
		}
		b[i] = c
	}
	return b, nil
}

// Parse reads the canonical key form produced by Key.
func Parse(key string) (Board, error) {
	var b Board
	if len(key) != Size {
		return b, fmt.Errorf("%w: key %q", errs.ErrMalformedBoard, key)
	}
	for i := 0; i < Size; i++ {
		switch key[i] {
		case '-':
		case 'X':
			b[i] = PlayerX
		case 'O':
			b[i] = PlayerO
		default:
			return b, fmt.Errorf("%w: key %q", errs.ErrMalformedBoard, key)
		}
	}
	return b, nil
}

// Key is the canonical serialization used by the move cache, e.g. "XO--X---O".
func (b Board) Key() string {
	var sb strings.Builder
	sb.Grow(Size)
	for _, c := range b {
		switch c {
		case PlayerX:
			sb.WriteByte('X')
		case PlayerO:
			sb.WriteByte('O')
		default:
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

func (b Board) Cells() []*string {
	out := make([]*string, Size)
	for i, c := range b {
		if c == Empty {
			continue
		}
		s := c.String()
		out[i] = &s
	}
	return out
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Cells())
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrMalformedBoard, err)
	}
	parsed, err := FromCells(cells)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (b Board) IsEmptyAt(pos int) bool {
	return pos >= 0 && pos < Size && b[pos] == Empty
}

func (b Board) EmptyPositions() []int {
	out := make([]int, 0, Size)
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Apply returns a new board with pos taken by player.
func (b Board) Apply(pos int, player Cell) (Board, error) {
	if pos < 0 || pos >= Size {
		return b, fmt.Errorf("%w: position %d out of range", errs.ErrIllegalMove, pos)
	}
	if b[pos] != Empty {
		return b, fmt.Errorf("%w: position %d is occupied by %s", errs.ErrIllegalMove, pos, b[pos])
	}
	if !player.IsPlayer() {
		return b, fmt.Errorf("%w: no player given", errs.ErrIllegalMove)
	}
	next := b
	next[pos] = player
	return next, nil
}

// String renders the board as three rows, empty cells shown as their index.
func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if col > 0 {
				sb.WriteString(" | ")
			}
			if b[i] == Empty {
				fmt.Fprintf(&sb, "%d", i)
			} else {
				sb.WriteString(b[i].String())
			}
		}
		sb.WriteString("\n")
		if row < 2 {
			sb.WriteString("---------\n")
		}
	}
	return sb.String()
}
