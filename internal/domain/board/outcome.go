package board

type Status int

const (
	Open Status = iota
	Win
	Draw
)

func (s Status) String() string {
	switch s {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "open"
	}
}

// Outcome is the verdict of WinnerOrDraw. Winner is set only when Status is Win.
type Outcome struct {
	Status Status
	Winner Cell
}

func (o Outcome) Terminal() bool {
	return o.Status != Open
}

// WinnerOrDraw scans the lines in order and reports the first completed one.
func (b Board) WinnerOrDraw() Outcome {
	for _, l := range lines {
		c := b[l[0]]
		if c != Empty && c == b[l[1]] && c == b[l[2]] {
			return Outcome{Status: Win, Winner: c}
		}
	}
	for _, c := range b {
		if c == Empty {
			return Outcome{Status: Open}
		}
	}
	return Outcome{Status: Draw}
}

// CompletingMove returns the empty cell of the first line holding two marks
// of player and one empty cell.
func (b Board) CompletingMove(player Cell) (int, bool) {
	if !player.IsPlayer() {
		return NoMove, false
	}
	for _, l := range lines {
		own, empty := 0, NoMove
		for _, i := range l {
			switch b[i] {
			case player:
				own++
			case Empty:
				empty = i
			}
		}
		if own == 2 && empty != NoMove {
			return empty, true
		}
	}
	return NoMove, false
}
