// Package cache provides BoardCache implementations backed by Redis and by
// process memory.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/taktline/taktline/internal/planning/application/queries"
)

// boardKey is the Redis key under which the rendered board is stored.
const boardKey = "taktline:planning:board"

// RedisBoardCache stores the rendered schedule board in Redis. All errors
// are swallowed so a Redis outage degrades reads to the database instead of
// failing them; a circuit breaker keeps a dead Redis from adding latency to
// every query.
type RedisBoardCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewRedisBoardCache creates a new RedisBoardCache. A zero ttl stores the
// board without expiration.
func NewRedisBoardCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisBoardCache {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "board-cache",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"cache", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &RedisBoardCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		ttl:     ttl,
		logger:  logger,
	}
}

// Get retrieves the cached board. A miss, an unreachable Redis, and an
// unreadable payload all report a plain miss.
func (c *RedisBoardCache) Get(ctx context.Context) (*queries.ScheduleBoardDTO, bool) {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		data, err := c.client.Get(ctx, boardKey).Bytes()
		if err == redis.Nil {
			// A miss is not a failure; it must not trip the breaker.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.logUnavailable("board cache read failed", err)
		return nil, false
	}
	if payload == nil {
		return nil, false
	}

	var board queries.ScheduleBoardDTO
	if err := json.Unmarshal(payload, &board); err != nil {
		c.logger.Warn("discarding unreadable cached board", "error", err)
		return nil, false
	}
	return &board, true
}

// Set stores the board under the cache TTL.
func (c *RedisBoardCache) Set(ctx context.Context, board *queries.ScheduleBoardDTO) {
	if board == nil {
		return
	}

	payload, err := json.Marshal(board)
	if err != nil {
		c.logger.Warn("failed to encode board for cache", "error", err)
		return
	}

	_, err = c.breaker.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, boardKey, payload, c.ttl).Err()
	})
	if err != nil {
		c.logUnavailable("board cache write failed", err)
	}
}

func (c *RedisBoardCache) logUnavailable(msg string, err error) {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		c.logger.Debug("board cache circuit open")
		return
	}
	c.logger.Warn(msg, "error", err)
}
