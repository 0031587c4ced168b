package proto

import (
	"fmt"
	"math"

	structpb "google.golang.org/protobuf/types/known/structpb"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
)

// Request layout:
//
//	{"board": ["X", "", "O", ...], "player": "O", "history": [{"player": "X", "position": 0}]}
//
// Response layout:
//
//	{"move": 4}

func EncodeSuggestRequest(b board.Board, toMove board.Cell, history board.MoveHistory) (*structpb.Struct, error) {
	cells := make([]any, board.Size)
	for i, c := range b {
		cells[i] = c.String()
	}
	entries := history.All()
	moves := make([]any, 0, len(entries))
	for _, e := range entries {
		moves = append(moves, map[string]any{"player": e.Player.String(), "position": e.Position})
	}
	return structpb.NewStruct(map[string]any{
		"board":   cells,
		"player":  toMove.String(),
		"history": moves,
	})
}

func DecodeSuggestRequest(in *structpb.Struct) (board.Board, board.Cell, board.MoveHistory, error) {
	var b board.Board
	fields := in.GetFields()

	cells := fields["board"].GetListValue().GetValues()
	if len(cells) != board.Size {
		return b, board.Empty, board.MoveHistory{}, fmt.Errorf("%w: board must have %d cells, got %d", errs.ErrMalformedBoard, board.Size, len(cells))
	}
	for i, v := range cells {
		c, err := board.ParseCell(v.GetStringValue())
		if err != nil {
			return b, board.Empty, board.MoveHistory{}, err
		}
		b[i] = c
	}

	toMove, err := board.ParsePlayer(fields["player"].GetStringValue())
	if err != nil {
		return b, board.Empty, board.MoveHistory{}, err
	}

	var entries []board.HistoryEntry
	for _, v := range fields["history"].GetListValue().GetValues() {
		move := v.GetStructValue().GetFields()
		player, err := board.ParsePlayer(move["player"].GetStringValue())
		if err != nil {
			return b, board.Empty, board.MoveHistory{}, err
		}
		pos, ok := wholeNumber(move["position"])
		if !ok || pos < 0 || pos >= board.Size {
			return b, board.Empty, board.MoveHistory{}, fmt.Errorf("%w: history position must be an integer in [0,%d]", errs.ErrMalformedBoard, board.Size-1)
		}
		entries = append(entries, board.HistoryEntry{Player: player, Position: pos})
	}
	return b, toMove, board.NewMoveHistory(entries), nil
}

func EncodeSuggestResponse(pos int) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"move": pos})
}

// DecodeSuggestResponse returns the advisor's integer move. Range against the
// board is the caller's concern.
func DecodeSuggestResponse(out *structpb.Struct) (int, error) {
	v, ok := out.GetFields()["move"]
	if !ok {
		return board.NoMove, fmt.Errorf("%w: advisor response has no move", errs.ErrSuggestionFailure)
	}
	pos, ok := wholeNumber(v)
	if !ok {
		return board.NoMove, fmt.Errorf("%w: advisor move is not an integer", errs.ErrSuggestionFailure)
	}
	return pos, nil
}

// wholeNumber reports v as an int when it is a finite integral number that
// fits in 32 bits.
func wholeNumber(v *structpb.Value) (int, bool) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
