// Package position implements the position lifecycle manager: the
// subsystem that turns a filled entry into a tracked position with a
// live protective exit order, watches it for stop-loss and orphan
// conditions on every quote, and self-heals whenever the broker and the
// tracker's view of the world drift apart.
package position

import (
	"sync"

	"github.com/kestrel-trading/corehft/backend/models"
)

// Tracker holds the two concurrent maps the lifecycle manager reads and
// mutates: open positions by symbol, and pending orders by order id.
// All mutation is atomic at the map-entry granularity; readers take a
// cloned snapshot rather than hold a reference across any broker call.
type Tracker struct {
	mu        sync.RWMutex
	positions map[string]models.Position
	pending   map[string]models.PendingOrder
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		positions: make(map[string]models.Position),
		pending:   make(map[string]models.PendingOrder),
	}
}

// HasOpenOrPending implements strategy.PositionChecker: true if symbol
// already has a tracked position or a pending buy order outstanding.
func (t *Tracker) HasOpenOrPending(symbol string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if _, ok := t.positions[symbol]; ok {
		return true
	}
	for _, p := range t.pending {
		if p.Symbol == symbol && p.Side == models.OrderSideBuy {
			return true
		}
	}
	return false
}

// RegisterPendingOrder implements execution.PendingOrderRegistrar.
func (t *Tracker) RegisterPendingOrder(p models.PendingOrder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[p.OrderID] = p
}

// PendingOrder returns a snapshot of a pending order by id, if any.
func (t *Tracker) PendingOrder(orderID string) (models.PendingOrder, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pending[orderID]
	return p, ok
}

// RemovePendingOrder deletes a pending order by id.
func (t *Tracker) RemovePendingOrder(orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, orderID)
}

// PendingOrdersFor returns a snapshot of every pending order for
// symbol.
func (t *Tracker) PendingOrdersFor(symbol string) []models.PendingOrder {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []models.PendingOrder
	for _, p := range t.pending {
		if p.Symbol == symbol {
			out = append(out, p)
		}
	}
	return out
}

// AllPendingOrders returns a snapshot of every pending order.
func (t *Tracker) AllPendingOrders() []models.PendingOrder {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.PendingOrder, 0, len(t.pending))
	for _, p := range t.pending {
		out = append(out, p)
	}
	return out
}

// Position returns a snapshot of the tracked position for symbol, if
// any.
func (t *Tracker) Position(symbol string) (models.Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.positions[symbol]
	return p, ok
}

// SetPosition inserts or overwrites the tracked position for its
// symbol.
func (t *Tracker) SetPosition(p models.Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.positions[p.Symbol] = p
}

// RemovePosition deletes the tracked position for symbol, if any.
func (t *Tracker) RemovePosition(symbol string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.positions, symbol)
}

// AllPositions returns a snapshot of every tracked position.
func (t *Tracker) AllPositions() []models.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.Position, 0, len(t.positions))
	for _, p := range t.positions {
		out = append(out, p)
	}
	return out
}

// MutatePosition applies fn to the current snapshot of symbol's
// position under the tracker's lock and commits the result, so the
// read-modify-write is atomic at map-entry granularity. fn returning
// ok=false leaves the map untouched (used when the mutation discovers
// the position no longer applies).
func (t *Tracker) MutatePosition(symbol string, fn func(models.Position) (models.Position, bool)) (models.Position, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, exists := t.positions[symbol]
	if !exists {
		return models.Position{}, false
	}
	updated, ok := fn(p)
	if !ok {
		return p, false
	}
	t.positions[symbol] = updated
	return updated, true
}
