package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTTL is how long a fetched schedule is served before it is fetched
// again.
const DefaultTTL = 15 * time.Second

// Cache keeps the raw schedule document for TTL. A forced fetch bypasses
// the TTL.
type Cache struct {
	URL    string
	Client *http.Client
	TTL    time.Duration
	Clock  clock.Clock

	mu      sync.Mutex
	fetched time.Time
	raw     json.RawMessage
}

func NewCache(url string) *Cache {
	return &Cache{URL: url, Client: http.DefaultClient, TTL: DefaultTTL, Clock: clock.New()}
}

// Raw returns the cached document, fetching it when it is missing, older
// than TTL or force is set.
func (c *Cache) Raw(ctx context.Context, force bool) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Clock.Now()
	if c.raw == nil || now.Sub(c.fetched) > c.TTL {
		force = true
	}
	if !force {
		return c.raw, nil
	}

	raw, err := fetch(ctx, c.Client, c.URL)
	if err != nil {
		return nil, err
	}
	c.raw = raw
	c.fetched = now
	return raw, nil
}

// Talks returns the flattened cached document.
func (c *Cache) Talks(ctx context.Context, force bool) ([]Talk, error) {
	raw, err := c.Raw(ctx, force)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
