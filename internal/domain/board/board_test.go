package board

import (
	"encoding/json"
	"errors"
	"testing"

	errs "senti_ttt/internal/errors"
)

func mustParse(t *testing.T, key string) Board {
	t.Helper()
	b, err := Parse(key)
	if err != nil {
		t.Fatalf("parse %q: %v", key, err)
	}
	return b
}

func TestLinesCoverEveryCell(t *testing.T) {
	seen := map[int]int{}
	for _, l := range Lines() {
		for _, i := range l {
			seen[i]++
		}
	}
	if len(seen) != Size {
		t.Fatalf("expected all %d cells in some line, got %d", Size, len(seen))
	}
	if seen[4] != 4 {
		t.Errorf("center must belong to 4 lines, got %d", seen[4])
	}
}

func TestWinnerOrDraw(t *testing.T) {
	tests := []struct {
		key    string
		status Status
		winner Cell
	}{
		{"---------", Open, Empty},
		{"XXX-OO---", Win, PlayerX},
		{"X-OXO-O--", Win, PlayerO},
		{"O--XO-X-O", Win, PlayerO},
		{"XOXXOOOXX", Draw, Empty},
		{"XOXOXOOX-", Open, Empty},
	}
	for _, tt := range tests {
		got := mustParse(t, tt.key).WinnerOrDraw()
		if got.Status != tt.status || got.Winner != tt.winner {
			t.Errorf("%s: expected %v/%v, got %v/%v", tt.key, tt.status, tt.winner, got.Status, got.Winner)
		}
		if got.Terminal() != (tt.status != Open) {
			t.Errorf("%s: Terminal() mismatch", tt.key)
		}
	}
}

func TestEmptyPositionsAscending(t *testing.T) {
	got := mustParse(t, "X-O-X-O--").EmptyPositions()
	want := []int{1, 3, 5, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	b := mustParse(t, "X--------")
	next, err := b.Apply(4, PlayerO)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if b[4] != Empty {
		t.Fatalf("input board was mutated")
	}
	if next[4] != PlayerO || next[0] != PlayerX {
		t.Fatalf("unexpected board after apply: %s", next.Key())
	}
}

func TestApplyRejectsIllegalMoves(t *testing.T) {
	b := mustParse(t, "X--------")
	for _, pos := range []int{-1, 9, 0} {
		if _, err := b.Apply(pos, PlayerO); !errors.Is(err, errs.ErrIllegalMove) {
			t.Errorf("pos %d: expected ErrIllegalMove, got %v", pos, err)
		}
	}
	if _, err := b.Apply(1, Empty); !errors.Is(err, errs.ErrIllegalMove) {
		t.Errorf("expected ErrIllegalMove for empty player, got %v", err)
	}
}

func TestApplyTwiceOnSameCellFails(t *testing.T) {
	var b Board
	once, err := b.Apply(3, PlayerX)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := once.Apply(3, PlayerO); !errors.Is(err, errs.ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
}

func TestCompletingMove(t *testing.T) {
	tests := []struct {
		key    string
		player Cell
		want   int
		ok     bool
	}{
		{"XX-------", PlayerX, 2, true},
		{"XX-------", PlayerO, NoMove, false},
		{"OO-XX----", PlayerO, 2, true},
		{"OO-XX----", PlayerX, 5, true},
		{"X---X----", PlayerX, 8, true},
		{"XOX------", PlayerX, NoMove, false},
	}
	for _, tt := range tests {
		got, ok := mustParse(t, tt.key).CompletingMove(tt.player)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s/%s: expected %d,%v got %d,%v", tt.key, tt.player, tt.want, tt.ok, got, ok)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := "XO--X---O"
	if got := mustParse(t, key).Key(); got != key {
		t.Fatalf("expected %q, got %q", key, got)
	}
	if _, err := Parse("XO"); !errors.Is(err, errs.ErrMalformedBoard) {
		t.Fatalf("expected ErrMalformedBoard, got %v", err)
	}
}

func TestBoardJSON(t *testing.T) {
	var b Board
	if err := json.Unmarshal([]byte(`["X",null,"o",null,null,null,null,null,"X"]`), &b); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if b.Key() != "X-O-----X" {
		t.Fatalf("unexpected board %q", b.Key())
	}
	out, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `["X",null,"O",null,null,null,null,null,"X"]` {
		t.Fatalf("unexpected JSON %s", out)
	}
}

func TestBoardJSONRejectsMalformed(t *testing.T) {
	inputs := []string{
		`["X",null]`,
		`["X",null,"Z",null,null,null,null,null,null]`,
		`["X",null,"",null,null,null,null,null,null]`,
		`[1,null,null,null,null,null,null,null,null]`,
		`{"board":[]}`,
	}
	for _, in := range inputs {
		var b Board
		if err := json.Unmarshal([]byte(in), &b); !errors.Is(err, errs.ErrMalformedBoard) {
			t.Errorf("%s: expected ErrMalformedBoard, got %v", in, err)
		}
	}
}

func TestStringRendersIndicesForEmptyCells(t *testing.T) {
	want := "X | 1 | 2\n---------\n3 | O | 5\n---------\n6 | 7 | 8\n"
	if got := mustParse(t, "X---O----").String(); got != want {
		t.Fatalf("unexpected rendering:\n%s", got)
	}
}

func TestMoveHistoryAppendIsCopyOnWrite(t *testing.T) {
	h := NewMoveHistory([]HistoryEntry{{Player: PlayerX, Position: 4}})
	next := h.Append(PlayerO, 0)
	if h.Size() != 1 || next.Size() != 2 {
		t.Fatalf("expected sizes 1 and 2, got %d and %d", h.Size(), next.Size())
	}
	if next.All()[1] != (HistoryEntry{Player: PlayerO, Position: 0}) {
		t.Fatalf("unexpected last entry %+v", next.All()[1])
	}
}
