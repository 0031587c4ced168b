package decision

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
	"senti_ttt/internal/usecase/fallback"
	"senti_ttt/internal/usecase/search"
)

func mustParse(t *testing.T, key string) board.Board {
	t.Helper()
	b, err := board.Parse(key)
	if err != nil {
		t.Fatalf("parse %q: %v", key, err)
	}
	return b
}

type mapCache struct {
	mu      sync.Mutex
	moves   map[string]int
	records int
}

func newMapCache() *mapCache {
	return &mapCache{moves: map[string]int{}}
}

func (c *mapCache) Lookup(_ context.Context, b board.Board) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pos, ok := c.moves[b.Key()]
	return pos, ok
}

func (c *mapCache) Record(_ context.Context, b board.Board, pos int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records++
	if _, ok := c.moves[b.Key()]; !ok {
		c.moves[b.Key()] = pos
	}
}

type suggesterFunc func(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error)

func (f suggesterFunc) Suggest(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error) {
	return f(ctx, b, toMove, history)
}

func fixedSuggestion(pos int, err error) suggesterFunc {
	return func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
		return pos, err
	}
}

func newEngine(cache MoveCache, s Suggester, opts Options) *Engine {
	if opts.Fallback == nil {
		opts.Fallback = fallback.NewPolicy(1)
	}
	return NewEngine(cache, s, opts, zap.NewNop().Sugar())
}

func decide(t *testing.T, e *Engine, key string, me board.Cell, useSuggestion bool) Decision {
	t.Helper()
	d, err := e.Decide(context.Background(), Request{
		Board:         mustParse(t, key),
		ToMove:        me,
		Perspective:   me,
		UseSuggestion: useSuggestion,
	})
	if err != nil {
		t.Fatalf("Decide(%s) failed: %v", key, err)
	}
	return d
}

func TestDecideExamples(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		move   int
		source Source
	}{
		{"empty board opens at 0", "---------", 0, SourceSearch},
		{"blocks the open line", "XX-------", 2, SourceBlock},
		{"win precedes block", "OO-XX----", 2, SourceWin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(t, newEngine(newMapCache(), nil, Options{}), tt.key, board.PlayerO, false)
			if d.Move != tt.move || d.Source != tt.source {
				t.Fatalf("expected %d from %s, got %d from %s", tt.move, tt.source, d.Move, d.Source)
			}
		})
	}
}

func TestDecideRejectsTerminalBoards(t *testing.T) {
	e := newEngine(newMapCache(), nil, Options{})
	for _, key := range []string{"XXXOO----", "XOXXOOOXX"} {
		_, err := e.Decide(context.Background(), Request{Board: mustParse(t, key), ToMove: board.PlayerO, Perspective: board.PlayerO})
		if !errors.Is(err, errs.ErrInvariantViolation) {
			t.Errorf("%s: expected ErrInvariantViolation, got %v", key, err)
		}
	}
}

// X holds opposite corners around O's center: any corner loses, any edge draws.
const forkBoard = "X---O---X"

func TestSuggestionFusion(t *testing.T) {
	tests := []struct {
		name      string
		suggester Suggester
		move      int
		source    Source
		suggested int
		accepted  bool
	}{
		{"optimal suggestion accepted", fixedSuggestion(5, nil), 5, SourceSuggestion, 5, true},
		{"losing suggestion rejected", fixedSuggestion(2, nil), 1, SourceSearch, 2, false},
		{"occupied cell ignored", fixedSuggestion(0, nil), 1, SourceSearch, board.NoMove, false},
		{"out of range ignored", fixedSuggestion(42, nil), 1, SourceSearch, board.NoMove, false},
		{"failure ignored", fixedSuggestion(3, errors.New("upstream 503")), 1, SourceSearch, board.NoMove, false},
		{"panic ignored", suggesterFunc(func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
			panic("boom")
		}), 1, SourceSearch, board.NoMove, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(t, newEngine(newMapCache(), tt.suggester, Options{}), forkBoard, board.PlayerO, true)
			if d.Move != tt.move || d.Source != tt.source || d.Suggested != tt.suggested || d.Accepted != tt.accepted {
				t.Fatalf("expected %d/%s/%d/%v, got %+v", tt.move, tt.source, tt.suggested, tt.accepted, d)
			}
		})
	}
}

func TestSuggestionTimeoutFallsBackToSearch(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := suggesterFunc(func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
		<-release // ignores ctx on purpose
		return 5, nil
	})
	e := newEngine(newMapCache(), slow, Options{SuggestionTimeout: 20 * time.Millisecond})

	start := time.Now()
	d := decide(t, e, forkBoard, board.PlayerO, true)
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("decision blocked for %v", elapsed)
	}
	if d.Move != 1 || d.Source != SourceSearch {
		t.Fatalf("expected search move 1, got %+v", d)
	}
}

func TestSuggestionSkippedWhenDisabled(t *testing.T) {
	var calls atomic.Int32
	s := suggesterFunc(func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
		calls.Add(1)
		return 5, nil
	})
	e := newEngine(nil, s, Options{})
	decide(t, e, forkBoard, board.PlayerO, false)
	if calls.Load() != 0 {
		t.Fatalf("suggester must not be called when disabled")
	}
}

func TestTacticsPrecedeSuggestion(t *testing.T) {
	var calls atomic.Int32
	s := suggesterFunc(func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
		calls.Add(1)
		return 8, nil
	})
	d := decide(t, newEngine(nil, s, Options{}), "OO-XX----", board.PlayerO, true)
	if d.Move != 2 || d.Source != SourceWin {
		t.Fatalf("expected forced win at 2, got %+v", d)
	}
	if calls.Load() != 0 {
		t.Fatalf("suggester must not be consulted for forced moves")
	}
}

func TestSuggestionHistoryAndPlayerForwarded(t *testing.T) {
	var gotPlayer board.Cell
	var gotHistory int
	s := suggesterFunc(func(_ context.Context, _ board.Board, toMove board.Cell, h board.MoveHistory) (int, error) {
		gotPlayer, gotHistory = toMove, h.Size()
		return 7, nil
	})
	history := board.NewMoveHistory([]board.HistoryEntry{
		{Player: board.PlayerX, Position: 0},
		{Player: board.PlayerO, Position: 4},
		{Player: board.PlayerX, Position: 8},
	})
	_, err := newEngine(nil, s, Options{}).Decide(context.Background(), Request{
		Board:         mustParse(t, forkBoard),
		ToMove:        board.PlayerO,
		Perspective:   board.PlayerO,
		History:       history,
		UseSuggestion: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotPlayer != board.PlayerO || gotHistory != 3 {
		t.Fatalf("expected O and 3 history entries, got %s and %d", gotPlayer, gotHistory)
	}
}

func TestCacheDeterminism(t *testing.T) {
	var n atomic.Int32
	// A fickle advisor: answers a different edge every call.
	fickle := suggesterFunc(func(context.Context, board.Board, board.Cell, board.MoveHistory) (int, error) {
		return []int{1, 3, 5, 7}[n.Add(1)%4], nil
	})
	cache := newMapCache()
	e := newEngine(cache, fickle, Options{})

	first := decide(t, e, forkBoard, board.PlayerO, true)
	second := decide(t, e, forkBoard, board.PlayerO, true)
	if first.Move != second.Move {
		t.Fatalf("expected identical moves, got %d then %d", first.Move, second.Move)
	}
	if second.Source != SourceCache {
		t.Fatalf("expected second answer from cache, got %s", second.Source)
	}
	if cache.records != 1 {
		t.Fatalf("cache hits must not be recorded again, got %d records", cache.records)
	}
}

func TestStaleCacheEntryIsIgnored(t *testing.T) {
	cache := newMapCache()
	cache.moves[forkBoard] = 0 // occupied by X
	d := decide(t, newEngine(cache, nil, Options{}), forkBoard, board.PlayerO, false)
	if d.Source == SourceCache || d.Move != 1 {
		t.Fatalf("expected fresh search move 1, got %+v", d)
	}
}

func TestFastPolicyUsesFallback(t *testing.T) {
	d := decide(t, newEngine(nil, nil, Options{Policy: PolicyFast}), "X--------", board.PlayerO, false)
	if d.Move != 4 || d.Source != SourceFallback {
		t.Fatalf("expected fallback center, got %+v", d)
	}
}

func TestFastPolicyStillGuardsSuggestions(t *testing.T) {
	d := decide(t, newEngine(nil, fixedSuggestion(2, nil), Options{Policy: PolicyFast}), forkBoard, board.PlayerO, true)
	if d.Move != 1 || d.Accepted {
		t.Fatalf("expected losing suggestion to be replaced by search move 1, got %+v", d)
	}
}

func TestFinishReplacesIllegalCandidate(t *testing.T) {
	cache := newMapCache()
	e := newEngine(cache, nil, Options{})
	b := mustParse(t, "XO-------")

	d, err := e.finish(context.Background(), b, Decision{Move: 1, Source: SourceSuggestion, Accepted: true}, true)
	if err != nil {
		t.Fatal(err)
	}
	if d.Move != 2 || d.Source != SourceSafety || d.Accepted {
		t.Fatalf("expected safety move 2, got %+v", d)
	}
	if cache.moves[b.Key()] != 2 {
		t.Fatalf("expected the validated move to be cached")
	}

	if _, err := e.finish(context.Background(), mustParse(t, "XOXXOOOXX"), Decision{Move: board.NoMove}, false); !errors.Is(err, errs.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestFuse(t *testing.T) {
	best := search.Result{Move: 1, Score: search.Tie}
	if got, ok := Fuse(best, search.Result{Move: 6, Score: search.Loss}); ok || got != best {
		t.Errorf("worse suggestion must be rejected, got %+v %v", got, ok)
	}
	equal := search.Result{Move: 7, Score: search.Tie}
	if got, ok := Fuse(best, equal); !ok || got != equal {
		t.Errorf("equal suggestion must be kept, got %+v %v", got, ok)
	}
}

type position struct {
	b      board.Board
	toMove board.Cell
}

func reachablePositions() []position {
	seen := map[string]bool{}
	var out []position
	var walk func(b board.Board, toMove board.Cell)
	walk = func(b board.Board, toMove board.Cell) {
		k := b.Key() + toMove.String()
		if seen[k] {
			return
		}
		seen[k] = true
		if b.WinnerOrDraw().Terminal() {
			return
		}
		out = append(out, position{b, toMove})
		for _, pos := range b.EmptyPositions() {
			next := b
			next[pos] = toMove
			walk(next, toMove.Opponent())
		}
	}
	walk(board.Board{}, board.PlayerX)
	walk(board.Board{}, board.PlayerO)
	return out
}

func TestDecideIsLegalOnReachableBoards(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive")
	}
	engines := map[string]*Engine{
		"perfect": newEngine(newMapCache(), nil, Options{}),
		"fast":    newEngine(newMapCache(), nil, Options{Policy: PolicyFast}),
	}
	positions := reachablePositions()
	for name, e := range engines {
		for _, p := range positions {
			d, err := e.Decide(context.Background(), Request{Board: p.b, ToMove: p.toMove, Perspective: p.toMove})
			if err != nil {
				t.Fatalf("%s %s: %v", name, p.b.Key(), err)
			}
			if !p.b.IsEmptyAt(d.Move) {
				t.Fatalf("%s %s: illegal move %d", name, p.b.Key(), d.Move)
			}
		}
	}
}

func TestForcedWinTakenOnReachableBoards(t *testing.T) {
	e := newEngine(nil, fixedSuggestion(board.NoMove, errors.New("unused")), Options{})
	for _, p := range reachablePositions() {
		want, ok := p.b.CompletingMove(p.toMove)
		if !ok {
			continue
		}
		d, err := e.Decide(context.Background(), Request{Board: p.b, ToMove: p.toMove, Perspective: p.toMove, UseSuggestion: true})
		if err != nil {
			t.Fatal(err)
		}
		if d.Move != want || d.Source != SourceWin {
			t.Fatalf("%s: expected forced win %d, got %+v", p.b.Key(), want, d)
		}
	}
}

func TestSuggestionNeverRegresses(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive")
	}
	for _, p := range reachablePositions() {
		empty := p.b.EmptyPositions()
		if len(empty) > 6 {
			continue
		}
		for _, m := range empty {
			e := newEngine(nil, fixedSuggestion(m, nil), Options{})
			d, err := e.Decide(context.Background(), Request{Board: p.b, ToMove: p.toMove, Perspective: p.toMove, UseSuggestion: true})
			if err != nil {
				t.Fatal(err)
			}
			got, err := search.ScoreAfter(p.b, d.Move, p.toMove)
			if err != nil {
				t.Fatal(err)
			}
			suggested, err := search.ScoreAfter(p.b, m, p.toMove)
			if err != nil {
				t.Fatal(err)
			}
			if got < suggested {
				t.Fatalf("%s: final move %d scores %d, below suggestion %d scoring %d", p.b.Key(), d.Move, got, m, suggested)
			}
		}
	}
}

func TestEngineNeverLoses(t *testing.T) {
	for _, me := range []board.Cell{board.PlayerX, board.PlayerO} {
		e := newEngine(newMapCache(), nil, Options{})
		var play func(b board.Board, toMove board.Cell)
		play = func(b board.Board, toMove board.Cell) {
			outcome := b.WinnerOrDraw()
			if outcome.Status == board.Win && outcome.Winner != me {
				t.Fatalf("engine playing %s lost: %s", me, b.Key())
			}
			if outcome.Terminal() {
				return
			}
			if toMove == me {
				d, err := e.Decide(context.Background(), Request{Board: b, ToMove: me, Perspective: me})
				if err != nil {
					t.Fatal(err)
				}
				next, err := b.Apply(d.Move, me)
				if err != nil {
					t.Fatal(err)
				}
				play(next, me.Opponent())
				return
			}
			for _, pos := range b.EmptyPositions() {
				next, _ := b.Apply(pos, toMove)
				play(next, me)
			}
		}
		play(board.Board{}, board.PlayerX)
	}
}

func TestConcurrentDecisionsConverge(t *testing.T) {
	cache := newMapCache()
	e := newEngine(cache, nil, Options{})
	b := mustParse(t, forkBoard)

	var wg sync.WaitGroup
	moves := make([]int, 8)
	for i := range moves {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := e.Decide(context.Background(), Request{Board: b, ToMove: board.PlayerO, Perspective: board.PlayerO})
			if err != nil {
				t.Error(err)
				return
			}
			moves[i] = d.Move
		}(i)
	}
	wg.Wait()
	for _, m := range moves {
		if m != moves[0] {
			t.Fatalf("expected identical moves, got %v", moves)
		}
	}
}
