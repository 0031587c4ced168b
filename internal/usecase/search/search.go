package search

import (
	"fmt"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
)

const (
	Loss = -1
	Tie  = 0
	Won  = 1
)

// Result is the game-theoretic verdict for the perspective player.
// Move is board.NoMove only when the board is terminal.
type Result struct {
	Move  int `json:"move"`
	Score int `json:"score"`
}

func (r Result) HasMove() bool {
	return r.Move != board.NoMove
}

// Search runs full-depth minimax without pruning. Ties keep the first move
// found in ascending position order. It is a pure function of its arguments
// and safe for concurrent use.
func Search(b board.Board, toMove, perspective board.Cell) (Result, error) {
	if !toMove.IsPlayer() || !perspective.IsPlayer() {
		return Result{Move: board.NoMove}, fmt.Errorf("%w: search needs two players", errs.ErrInvariantViolation)
	}
	return minimax(b, toMove, perspective)
}

func minimax(b board.Board, toMove, perspective board.Cell) (Result, error) {
	outcome := b.WinnerOrDraw()
	switch outcome.Status {
	case board.Win:
		if outcome.Winner == perspective {
			return Result{Move: board.NoMove, Score: Won}, nil
		}
		return Result{Move: board.NoMove, Score: Loss}, nil
	case board.Draw:
		return Result{Move: board.NoMove, Score: Tie}, nil
	}

	empty := b.EmptyPositions()
	if len(empty) == 0 {
		return Result{Move: board.NoMove}, fmt.Errorf("%w: open board without empty cells", errs.ErrInvariantViolation)
	}

	maximizing := toMove == perspective
	best := Result{Move: board.NoMove}
	for _, pos := range empty {
		next, err := b.Apply(pos, toMove)
		if err != nil {
			return Result{Move: board.NoMove}, err
		}
		child, err := minimax(next, toMove.Opponent(), perspective)
		if err != nil {
			return Result{Move: board.NoMove}, err
		}
		if best.Move == board.NoMove ||
			(maximizing && child.Score > best.Score) ||
			(!maximizing && child.Score < best.Score) {
			best = Result{Move: pos, Score: child.Score}
		}
	}
	return best, nil
}

// ScoreAfter evaluates the position reached when perspective plays pos.
func ScoreAfter(b board.Board, pos int, perspective board.Cell) (int, error) {
	next, err := b.Apply(pos, perspective)
	if err != nil {
		return 0, err
	}
	res, err := Search(next, perspective.Opponent(), perspective)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}
