// Package ratelimit implements the execution path's per-symbol order
// admission gate. Admission decisions compare "now" against the stored
// issuing instant, never against a snapshot taken earlier and passed
// across calls, so concurrent callers for the same symbol cannot both
// be admitted inside one interval.
package ratelimit

import (
	"sync"
	"time"
)

// Gate is a per-symbol token-bucket-of-one admission gate: at most one
// admission per symbol per interval.
type Gate struct {
	interval time.Duration

	mu         sync.Mutex
	lastIssued map[string]time.Time
}

// NewGate creates a Gate with the given minimum interval between
// admitted orders for the same symbol.
func NewGate(interval time.Duration) *Gate {
	return &Gate{
		interval:   interval,
		lastIssued: make(map[string]time.Time),
	}
}

// Allow reports whether an order for symbol may be admitted right now.
// On admission it immediately records the issuing instant so the next
// call's comparison is against this admission, not a prior snapshot.
func (g *Gate) Allow(symbol string) bool {
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastIssued[symbol]
	if ok && now.Sub(last) < g.interval {
		return false
	}
	g.lastIssued[symbol] = now
	return true
}
