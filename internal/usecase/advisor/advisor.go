package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
)

type LlmStore interface {
	SendRequestToLlm(ctx context.Context, request string) (response string, err error)
}

// LlmSuggester asks a language model for a move. Forced wins and blocks are
// answered locally without a round trip.
type LlmSuggester struct {
	llm LlmStore
	log *zap.SugaredLogger
}

func NewLlmSuggester(llm LlmStore, log *zap.SugaredLogger) *LlmSuggester {
	return &LlmSuggester{llm: llm, log: log}
}

func (s *LlmSuggester) Suggest(ctx context.Context, b board.Board, toMove board.Cell, history board.MoveHistory) (int, error) {
	if !toMove.IsPlayer() {
		return board.NoMove, fmt.Errorf("%w: player to move missing", errs.ErrSuggestionFailure)
	}
	if pos, ok := b.CompletingMove(toMove); ok {
		return pos, nil
	}
	if pos, ok := b.CompletingMove(toMove.Opponent()); ok {
		return pos, nil
	}

	prompt, err := BuildPrompt(b, toMove, history)
	if err != nil {
		return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, err)
	}
	answer, err := s.llm.SendRequestToLlm(ctx, prompt)
	if err != nil {
		return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, err)
	}
	pos, err := ParseMove(answer)
	if err != nil {
		return board.NoMove, err
	}
	s.log.Debugw("llm suggestion", "board", b.Key(), "player", toMove.String(), "answer", answer, "move", pos)
	return pos, nil
}
