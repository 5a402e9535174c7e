package cache

import (
	"context"
	"sync"
	"time"

	"github.com/taktline/taktline/internal/planning/application/queries"
)

// InMemoryBoardCache is a process-local BoardCache used when Redis is not
// configured, and in tests.
type InMemoryBoardCache struct {
	mu        sync.Mutex
	board     *queries.ScheduleBoardDTO
	expiresAt time.Time
	ttl       time.Duration
}

// NewInMemoryBoardCache creates a new in-memory board cache. A zero ttl
// keeps the board until the next Set.
func NewInMemoryBoardCache(ttl time.Duration) *InMemoryBoardCache {
	return &InMemoryBoardCache{ttl: ttl}
}

// Get retrieves the cached board.
func (c *InMemoryBoardCache) Get(ctx context.Context) (*queries.ScheduleBoardDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.board == nil {
		return nil, false
	}
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt) {
		c.board = nil
		return nil, false
	}
	return c.board, true
}

// Set stores the board.
func (c *InMemoryBoardCache) Set(ctx context.Context, board *queries.ScheduleBoardDTO) {
	if board == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.board = board
	if c.ttl > 0 {
		c.expiresAt = time.Now().Add(c.ttl)
	} else {
		c.expiresAt = time.Time{}
	}
}
