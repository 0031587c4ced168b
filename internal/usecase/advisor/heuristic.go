package advisor

import (
	"context"
	"fmt"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
	"senti_ttt/internal/usecase/fallback"
)

// HeuristicSuggester plays forced wins and blocks, otherwise the positional
// fallback. It stands in for the language model when no key is configured.
type HeuristicSuggester struct {
	policy *fallback.Policy
}

func NewHeuristicSuggester(policy *fallback.Policy) *HeuristicSuggester {
	return &HeuristicSuggester{policy: policy}
}

func (s *HeuristicSuggester) Suggest(_ context.Context, b board.Board, toMove board.Cell, _ board.MoveHistory) (int, error) {
	if !toMove.IsPlayer() {
		return board.NoMove, fmt.Errorf("%w: player to move missing", errs.ErrSuggestionFailure)
	}
	if pos, ok := b.CompletingMove(toMove); ok {
		return pos, nil
	}
	if pos, ok := b.CompletingMove(toMove.Opponent()); ok {
		return pos, nil
	}
	pos, err := s.policy.Move(b)
	if err != nil {
		return board.NoMove, fmt.Errorf("%w: %v", errs.ErrSuggestionFailure, err)
	}
	return pos, nil
}
