package repository

import (
	"context"
	"sync"

	"senti_ttt/internal/domain/board"
)

// MemoryMoveCache keeps decisions for the process lifetime. The key space is
// bounded by 3^9 boards, so nothing is ever evicted.
type MemoryMoveCache struct {
	moves sync.Map // map[board key]int
}

func NewMemoryMoveCache() *MemoryMoveCache {
	return &MemoryMoveCache{}
}

func (c *MemoryMoveCache) Lookup(_ context.Context, b board.Board) (int, bool) {
	v, ok := c.moves.Load(b.Key())
	if !ok {
		return board.NoMove, false
	}
	return v.(int), true
}

// Record stores pos unless the board already has an entry.
func (c *MemoryMoveCache) Record(_ context.Context, b board.Board, pos int) {
	c.moves.LoadOrStore(b.Key(), pos)
}

func (c *MemoryMoveCache) Len() int {
	n := 0
	c.moves.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
