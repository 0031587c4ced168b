package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"senti_ttt/internal/domain/board"
	"senti_ttt/internal/domain/game"
	errs "senti_ttt/internal/errors"
	"senti_ttt/internal/usecase/decision"
)

const (
	DefaultDecisionsLimit = 20
	MaxDecisionsLimit     = 200
)

type DecisionStore interface {
	SaveDecision(ctx context.Context, record game.DecisionRecord) error
	LatestDecisions(ctx context.Context, limit int) ([]game.DecisionRecord, error)
}

type Decider interface {
	Decide(ctx context.Context, req decision.Request) (decision.Decision, error)
	HasSuggester() bool
}

type MoveUseCase struct {
	engine   Decider
	store    DecisionStore
	aiPlayer board.Cell
	log      *zap.SugaredLogger
	now      func() time.Time
}

// NewMoveUseCase builds the use case. store may be nil, which disables the
// decision journal.
func NewMoveUseCase(engine Decider, store DecisionStore, aiPlayer board.Cell, log *zap.SugaredLogger) *MoveUseCase {
	return &MoveUseCase{
		engine:   engine,
		store:    store,
		aiPlayer: aiPlayer,
		log:      log,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for timestamps. Tests only.
func (m *MoveUseCase) WithClock(now func() time.Time) *MoveUseCase {
	m.now = now
	return m
}

func (m *MoveUseCase) Now() time.Time {
	return m.now().UTC()
}

func (m *MoveUseCase) AiMove(ctx context.Context, req game.AiMoveRequest) (game.AiMoveResponse, error) {
	if req.Board == nil {
		return game.AiMoveResponse{}, fmt.Errorf("%w: board is required", errs.ErrMalformedBoard)
	}
	b := *req.Board

	player := m.aiPlayer
	if req.CurrentPlayer != "" {
		p, err := board.ParsePlayer(req.CurrentPlayer)
		if err != nil {
			return game.AiMoveResponse{}, err
		}
		player = p
	}

	if outcome := b.WinnerOrDraw(); outcome.Terminal() {
		return game.AiMoveResponse{}, fmt.Errorf("%w: game is already over (%s)", errs.ErrInvariantViolation, outcome.Status)
	}

	useSuggestion := m.engine.HasSuggester()
	if req.UseSuggestion != nil {
		useSuggestion = useSuggestion && *req.UseSuggestion
	}

	d, err := m.engine.Decide(ctx, decision.Request{
		Board:         b,
		ToMove:        player,
		Perspective:   player,
		History:       board.NewMoveHistory(req.MoveHistory),
		UseSuggestion: useSuggestion,
	})
	if err != nil {
		return game.AiMoveResponse{}, err
	}

	resp := game.AiMoveResponse{
		Move:       d.Move,
		Player:     player.String(),
		Timestamp:  m.Now(),
		Source:     string(d.Source),
		DecisionID: uuid.New().String(),
	}
	m.journal(ctx, b, d, resp)
	return resp, nil
}

// journal is best effort: a failed write is logged and never fails the move.
func (m *MoveUseCase) journal(ctx context.Context, b board.Board, d decision.Decision, resp game.AiMoveResponse) {
	if m.store == nil {
		return
	}
	record := game.DecisionRecord{
		ID:        resp.DecisionID,
		Board:     b.Key(),
		Player:    resp.Player,
		Move:      d.Move,
		Source:    resp.Source,
		Accepted:  d.Accepted,
		CreatedAt: resp.Timestamp,
	}
	if d.Suggested != board.NoMove {
		suggested := d.Suggested
		record.Suggested = &suggested
	}
	if err := m.store.SaveDecision(ctx, record); err != nil {
		m.log.Warnw("failed to journal decision", "decisionId", record.ID, "error", err)
	}
}

func (m *MoveUseCase) ListDecisions(ctx context.Context, limit int) ([]game.DecisionRecord, error) {
	if m.store == nil {
		return nil, errs.ErrJournalDisabled
	}
	switch {
	case limit <= 0:
		limit = DefaultDecisionsLimit
	case limit > MaxDecisionsLimit:
		limit = MaxDecisionsLimit
	}
	return m.store.LatestDecisions(ctx, limit)
}

func (m *MoveUseCase) JournalEnabled() bool {
	return m.store != nil
}
