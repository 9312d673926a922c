package execution

import (
	"sync"
	"time"

	"github.com/kestrel-trading/corehft/backend/models"
)

const defaultAccountCacheTTL = 2 * time.Second

// AccountCache memoizes the broker's balance for a short TTL so that a
// burst of sizing decisions across symbols doesn't hammer the broker's
// account endpoint once per signal. A single in-flight refresh is
// shared by every caller that arrives while it is outstanding.
type AccountCache struct {
	broker Broker
	ttl    time.Duration

	mu        sync.Mutex
	balance   models.Balance
	fetchedAt time.Time
	refresh   chan struct{} // non-nil while a refresh is in flight
}

// NewAccountCache creates a cache in front of broker with the given
// TTL. A non-positive ttl falls back to 2s.
func NewAccountCache(broker Broker, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = defaultAccountCacheTTL
	}
	return &AccountCache{broker: broker, ttl: ttl}
}

// Balance returns the cached balance, refreshing it from the broker if
// stale. Concurrent callers during a refresh block on the same
// in-flight fetch rather than each issuing their own.
func (c *AccountCache) Balance() (models.Balance, error) {
	c.mu.Lock()
	if time.Since(c.fetchedAt) < c.ttl && !c.fetchedAt.IsZero() {
		bal := c.balance
		c.mu.Unlock()
		return bal, nil
	}

	if c.refresh != nil {
		wait := c.refresh
		c.mu.Unlock()
		<-wait
		c.mu.Lock()
		bal := c.balance
		c.mu.Unlock()
		return bal, nil
	}

	done := make(chan struct{})
	c.refresh = done
	c.mu.Unlock()

	bal, err := c.broker.GetBalance()

	c.mu.Lock()
	if err == nil && bal != nil {
		c.balance = *bal
		c.fetchedAt = time.Now()
	}
	c.refresh = nil
	close(done)
	result := c.balance
	c.mu.Unlock()

	if err != nil {
		return models.Balance{}, err
	}
	return result, nil
}

// Invalidate forces the next Balance call to refetch from the broker.
func (c *AccountCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}
