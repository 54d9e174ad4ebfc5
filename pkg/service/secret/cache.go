package secret

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/singleflight"

	"github.com/andystumpf/CalendarToSlack/pkg/domain/interfaces"
)

// DefaultCacheTTL is the default TTL for the cached signing secret
const DefaultCacheTTL = 5 * time.Minute

// Cache wraps a SecretSource with a TTL cache. Concurrent webhook deliveries
// arriving with a cold cache share a single upstream fetch via singleflight.
// Fetch errors are never cached: the next request retries.
type Cache struct {
	src   interfaces.SecretSource
	ttl   time.Duration
	group singleflight.Group

	mu        sync.RWMutex
	value     string
	expiresAt time.Time
}

var _ interfaces.SecretSource = &Cache{}

type CacheOption func(*Cache)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

func NewCache(src interfaces.SecretSource, opts ...CacheOption) *Cache {
	c := &Cache{
		src: src,
		ttl: DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) SigningSecret(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.value != "" && time.Now().Before(c.expiresAt) {
		value := c.value
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("signing-secret", func() (any, error) {
		// The flight serves every waiting caller, not only the one whose
		// context happens to run the closure.
		value, err := c.src.SigningSecret(context.WithoutCancel(ctx))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to fetch signing secret")
		}

		c.mu.Lock()
		c.value = value
		c.expiresAt = time.Now().Add(c.ttl)
		c.mu.Unlock()

		return value, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}
