package accounts

import (
	"context"
	"sync"
	"time"
)

// Cached wraps a Source and reuses its last successful result for ttl.
// A failed refresh keeps serving the previous list when one exists.
type Cached struct {
	src Source
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	list    []Account
	fetched time.Time
	valid   bool
}

// NewCached returns a caching wrapper around src.
func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{src: src, ttl: ttl, now: time.Now}
}

// Accounts implements Source.
func (c *Cached) Accounts(ctx context.Context) ([]Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetched) < c.ttl {
		return c.snapshot(), nil
	}

	list, err := c.src.Accounts(ctx)
	if err != nil {
		if c.valid {
			return c.snapshot(), nil
		}
		return nil, err
	}
	c.list = list
	c.fetched = c.now()
	c.valid = true
	return c.snapshot(), nil
}

// Invalidate forces the next call to refresh.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

func (c *Cached) snapshot() []Account {
	out := make([]Account, len(c.list))
	copy(out, c.list)
	return out
}
