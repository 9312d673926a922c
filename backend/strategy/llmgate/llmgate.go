// Package llmgate is the hybrid strategy's admission gate in front of an
// external advisory call (an LLM, a risk model, any slow out-of-process
// opinion). It adapts the mutex-plus-wait-queue idiom of a broker
// admission lock into a bounded gate: a concurrency cap limits how many
// calls are in flight, and a queue-size cap rejects overflow immediately
// rather than queuing it indefinitely. A request that cannot be
// admitted, or whose call errors or times out, is treated as "gate
// unknown" and interpreted as closed by the caller.
package llmgate

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrQueueFull is returned when the queue-size cap is already reached.
// Callers treat this the same as a "no" from the advisor.
var ErrQueueFull = errors.New("llmgate: request queue full")

// Advisor is the external opinion this gate fronts. Open reports
// whether a buy signal for symbol should be allowed through.
type Advisor interface {
	Open(ctx context.Context, symbol string) (bool, error)
}

// Gate bounds concurrent calls to an Advisor and the number of callers
// inside Ask, whether waiting for a slot or holding one.
type Gate struct {
	advisor     Advisor
	sem         chan struct{}
	queueSize   int32
	queued      atomic.Int32
	callTimeout time.Duration
}

const (
	defaultConcurrency = 3
	defaultQueueSize   = 100
	defaultCallTimeout = 2 * time.Second
)

// New creates a Gate. concurrency and queueSize fall back to their
// defaults (3 and 100) when non-positive; callTimeout falls back to 2s.
func New(advisor Advisor, concurrency, queueSize int, callTimeout time.Duration) *Gate {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Gate{
		advisor:     advisor,
		sem:         make(chan struct{}, concurrency),
		queueSize:   int32(queueSize),
		callTimeout: callTimeout,
	}
}

// Ask asks the advisor whether symbol should be allowed through. If the
// queue is already at capacity it fails fast with ErrQueueFull instead
// of piling up waiters behind a slow advisor.
func (g *Gate) Ask(ctx context.Context, symbol string) (bool, error) {
	if g.queued.Add(1) > g.queueSize {
		g.queued.Add(-1)
		return false, ErrQueueFull
	}
	defer g.queued.Add(-1)

	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	defer func() { <-g.sem }()

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	return g.advisor.Open(callCtx, symbol)
}

// InFlight reports how many calls currently hold a concurrency slot.
func (g *Gate) InFlight() int {
	return len(g.sem)
}

// Queued reports how many callers are currently inside Ask, counting
// both those waiting for a slot and those holding one.
func (g *Gate) Queued() int {
	return int(g.queued.Load())
}
