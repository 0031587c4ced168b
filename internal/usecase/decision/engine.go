package decision

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
	"senti_ttt/internal/usecase/fallback"
	"senti_ttt/internal/usecase/search"
)

type MoveCache interface {
	Lookup(ctx context.Context, b board.Board) (int, bool)
	Record(ctx context.Context, b board.Board, pos int)
}

// Suggester is an untrusted move advisor. Any error counts as a failed
// suggestion; a returned position still has to be validated.
type Suggester interface {
	Suggest(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error)
}

type Source string

const (
	SourceCache      Source = "cache"
	SourceWin        Source = "win"
	SourceBlock      Source = "block"
	SourceSuggestion Source = "suggestion"
	SourceSearch     Source = "search"
	SourceFallback   Source = "fallback"
	SourceSafety     Source = "safety"
)

type Policy int

const (
	// PolicyPerfect answers with exhaustive search.
	PolicyPerfect Policy = iota
	// PolicyFast answers with the heuristic fallback where search would run.
	// Suggestions are still checked against search.
	PolicyFast
)

const DefaultSuggestionTimeout = 4 * time.Second

type Request struct {
	Board         board.Board
	ToMove        board.Cell
	Perspective   board.Cell
	History       board.MoveHistory
	UseSuggestion bool
}

type Decision struct {
	Move   int    `json:"move"`
	Source Source `json:"source"`
	// Suggested is the advisor's legal answer, board.NoMove if there was none.
	Suggested int  `json:"suggested"`
	Accepted  bool `json:"accepted"`
}

type Options struct {
	Policy            Policy
	SuggestionTimeout time.Duration
	Fallback          *fallback.Policy
}

type Engine struct {
	cache     MoveCache
	suggester Suggester
	fallback  *fallback.Policy
	policy    Policy
	timeout   time.Duration
	log       *zap.SugaredLogger
}

// NewEngine wires the engine. suggester may be nil when no advisor is configured.
func NewEngine(cache MoveCache, suggester Suggester, opts Options, log *zap.SugaredLogger) *Engine {
	if opts.SuggestionTimeout <= 0 {
		opts.SuggestionTimeout = DefaultSuggestionTimeout
	}
	if opts.Fallback == nil {
		opts.Fallback = fallback.NewTimeSeededPolicy()
	}
	return &Engine{
		cache:     cache,
		suggester: suggester,
		fallback:  opts.Fallback,
		policy:    opts.Policy,
		timeout:   opts.SuggestionTimeout,
		log:       log,
	}
}

func (e *Engine) HasSuggester() bool {
	return e.suggester != nil
}

// Decide returns a legal move for req.Perspective. The only error it returns
// wraps errs.ErrInvariantViolation and means the board admits no move.
func (e *Engine) Decide(ctx context.Context, req Request) (Decision, error) {
	b, me := req.Board, req.Perspective
	if !me.IsPlayer() {
		return Decision{}, fmt.Errorf("%w: perspective player missing", errs.ErrInvariantViolation)
	}
	if outcome := b.WinnerOrDraw(); outcome.Terminal() {
		return Decision{}, fmt.Errorf("%w: board is already decided (%s)", errs.ErrInvariantViolation, outcome.Status)
	}

	if e.cache != nil {
		if pos, ok := e.cache.Lookup(ctx, b); ok {
			if b.IsEmptyAt(pos) {
				return e.finish(ctx, b, Decision{Move: pos, Source: SourceCache, Suggested: board.NoMove}, false)
			}
			e.log.Warnw("ignoring stale cached move", "board", b.Key(), "move", pos)
		}
	}

	if pos, ok := b.CompletingMove(me); ok {
		return e.finish(ctx, b, Decision{Move: pos, Source: SourceWin, Suggested: board.NoMove}, true)
	}
	if pos, ok := b.CompletingMove(me.Opponent()); ok {
		return e.finish(ctx, b, Decision{Move: pos, Source: SourceBlock, Suggested: board.NoMove}, true)
	}

	if req.UseSuggestion && e.suggester != nil {
		d, ok, err := e.fromSuggestion(ctx, req)
		if err != nil {
			return Decision{}, err
		}
		if ok {
			return e.finish(ctx, b, d, true)
		}
	}

	if e.policy == PolicyFast {
		pos, err := e.fallback.Move(b)
		if err != nil {
			return Decision{}, err
		}
		return e.finish(ctx, b, Decision{Move: pos, Source: SourceFallback, Suggested: board.NoMove}, true)
	}

	best, err := search.Search(b, me, me)
	if err != nil {
		return Decision{}, err
	}
	if !best.HasMove() {
		return Decision{}, fmt.Errorf("%w: search found no move", errs.ErrInvariantViolation)
	}
	return e.finish(ctx, b, Decision{Move: best.Move, Source: SourceSearch, Suggested: board.NoMove}, true)
}

// fromSuggestion reports ok=false when the advisor failed or answered with an
// illegal position; the caller then continues without it.
func (e *Engine) fromSuggestion(ctx context.Context, req Request) (Decision, bool, error) {
	b, me := req.Board, req.Perspective
	pos, err := e.suggest(ctx, req)
	if err != nil {
		e.log.Warnw("suggestion failed, using search", "board", b.Key(), "error", err)
		return Decision{}, false, nil
	}
	if !b.IsEmptyAt(pos) {
		e.log.Warnw("suggestion is not a legal move, using search", "board", b.Key(), "move", pos)
		return Decision{}, false, nil
	}

	best, err := search.Search(b, me, me)
	if err != nil {
		return Decision{}, false, err
	}
	score, err := search.ScoreAfter(b, pos, me)
	if err != nil {
		return Decision{}, false, err
	}

	chosen, accepted := Fuse(best, search.Result{Move: pos, Score: score})
	d := Decision{Move: chosen.Move, Source: SourceSuggestion, Suggested: pos, Accepted: accepted}
	if !accepted {
		d.Source = SourceSearch
		e.log.Infow("suggestion rejected as suboptimal",
			"board", b.Key(), "suggested", pos, "suggestedScore", score,
			"best", best.Move, "bestScore", best.Score)
	}
	return d, true, nil
}

// suggest bounds the advisor call by the engine timeout even when the
// advisor itself ignores ctx.
func (e *Engine) suggest(ctx context.Context, req Request) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		pos int
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{pos: board.NoMove, err: fmt.Errorf("%w: advisor panicked: %v", errs.ErrSuggestionFailure, r)}
			}
		}()
		pos, err := e.suggester.Suggest(ctx, req.Board, req.ToMove, req.History)
		ch <- outcome{pos: pos, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, out.err)
		}
		return out.pos, nil
	case <-ctx.Done():
		return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, ctx.Err())
	}
}

// finish is the last check before a move leaves the engine: an unusable
// candidate is replaced by the first empty cell.
func (e *Engine) finish(ctx context.Context, b board.Board, d Decision, record bool) (Decision, error) {
	if !b.IsEmptyAt(d.Move) {
		empty := b.EmptyPositions()
		if len(empty) == 0 {
			return Decision{}, fmt.Errorf("%w: no empty cell left", errs.ErrInvariantViolation)
		}
		e.log.Errorw("discarding illegal candidate move", "board", b.Key(), "move", d.Move, "source", d.Source)
		d.Move, d.Source, d.Accepted = empty[0], SourceSafety, false
	}
	if record && e.cache != nil {
		e.cache.Record(ctx, b, d.Move)
	}
	return d, nil
}
