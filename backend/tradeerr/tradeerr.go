// Package tradeerr defines the sentinel error kinds the core trading
// engine distinguishes at component boundaries. Callers use errors.Is to
// decide whether to retry on the next tick, drop silently, or abort
// startup, instead of pattern-matching error strings.
package tradeerr

import "errors"

var (
	// ErrNoMarketData means the market store has no price for a symbol
	// yet (empty history, not an upstream failure).
	ErrNoMarketData = errors.New("no market data available")

	// ErrInsufficientFunds means sizing clamped the notional below the
	// broker's minimum order amount.
	ErrInsufficientFunds = errors.New("insufficient funds for minimum order size")

	// ErrRateLimited means the per-symbol admission gate rejected a
	// request because the minimum order interval has not elapsed.
	ErrRateLimited = errors.New("rate limited")

	// ErrPositionNotFound means the broker no longer reports a holding
	// the tracker expected to find. This is an authoritative signal,
	// never treated as a retryable error.
	ErrPositionNotFound = errors.New("position not found at broker")

	// ErrOrderRejected means the broker rejected an order outright
	// (bad price, halted symbol). Not retried at the execution layer.
	ErrOrderRejected = errors.New("order rejected by broker")

	// ErrRetriesExhausted means a position's recreate_attempts reached
	// the configured maximum without a successful exit-order placement.
	ErrRetriesExhausted = errors.New("exit order recreation retries exhausted")
)
