package fallback

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"senti_ttt/internal/domain/board"
	errs "senti_ttt/internal/errors"
)

const center = 4

var (
	corners = []int{0, 2, 6, 8}
	edges   = []int{1, 3, 5, 7}
)

// Policy picks a good-enough move without searching: center, then a random
// free corner, then a random free edge, then the first empty cell.
type Policy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPolicy(seed int64) *Policy {
	return &Policy{rng: rand.New(rand.NewSource(seed))}
}

func NewTimeSeededPolicy() *Policy {
	return NewPolicy(time.Now().UnixNano())
}

func (p *Policy) Move(b board.Board) (int, error) {
	if b.IsEmptyAt(center) {
		return center, nil
	}
	if pos, ok := p.pick(b, corners); ok {
		return pos, nil
	}
	if pos, ok := p.pick(b, edges); ok {
		return pos, nil
	}
	if empty := b.EmptyPositions(); len(empty) > 0 {
		return empty[0], nil
	}
	return board.NoMove, fmt.Errorf("%w: no empty cell for fallback move", errs.ErrInvariantViolation)
}

func (p *Policy) pick(b board.Board, candidates []int) (int, bool) {
	free := make([]int, 0, len(candidates))
	for _, pos := range candidates {
		if b.IsEmptyAt(pos) {
			free = append(free, pos)
		}
	}
	if len(free) == 0 {
		return board.NoMove, false
	}
	p.mu.Lock()
	i := p.rng.Intn(len(free))
	p.mu.Unlock()
	return free[i], true
}
