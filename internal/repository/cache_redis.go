package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"senti_ttt/internal/domain/board"
)

const redisCacheTimeout = 500 * time.Millisecond

// RedisMoveCache shares decisions between server instances. Writes use SETNX
// so the first decision for a board wins. Redis failures are logged and
// treated as cache misses.
type RedisMoveCache struct {
	client *redis.Client
	prefix string
	log    *zap.SugaredLogger
}

func NewRedisMoveCache(client *redis.Client, prefix string, log *zap.SugaredLogger) *RedisMoveCache {
	return &RedisMoveCache{
		client: client,
		prefix: prefix,
		log:    log,
	}
}

func (c *RedisMoveCache) key(b board.Board) string {
	return c.prefix + b.Key()
}

func (c *RedisMoveCache) Lookup(ctx context.Context, b board.Board) (int, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(b)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warnw("move cache lookup failed", "board", b.Key(), "error", err)
		}
		return board.NoMove, false
	}
	pos, err := strconv.Atoi(val)
	if err != nil {
		c.log.Warnw("corrupt move cache entry", "board", b.Key(), "value", val)
		return board.NoMove, false
	}
	return pos, true
}

func (c *RedisMoveCache) Record(ctx context.Context, b board.Board, pos int) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := c.client.SetNX(ctx, c.key(b), pos, 0).Err(); err != nil {
		c.log.Warnw("move cache record failed", "board", b.Key(), "move", pos, "error", err)
	}
}
