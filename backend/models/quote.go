package models

import "time"

// Quote is a top-of-book bid/ask snapshot for a symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Timestamp time.Time `json:"timestamp"`
}

// Mid returns the midpoint of the bid/ask spread.
func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

// SpreadBps returns the bid/ask spread in basis points of the midpoint.
// Returns 0 if the midpoint is non-positive to avoid a division by zero
// propagating as +Inf/NaN into strategy math.
func (q Quote) SpreadBps() float64 {
	mid := q.Mid()
	if mid <= 0 {
		return 0
	}
	return 10000 * (q.Ask - q.Bid) / mid
}

// MarketTrade is a single executed trade print for a symbol.
type MarketTrade struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Holding is a broker-reported position, distinct from the tracked
// Position: it carries only what the broker itself knows, with no
// lifecycle-manager state layered on top.
type Holding struct {
	Symbol        string  `json:"symbol"`
	Qty           float64 `json:"qty"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
}

// PendingOrder tracks a submitted order whose terminal outcome
// (fill/cancel/expire/reject) has not yet been observed.
type PendingOrder struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Side      OrderSide `json:"side"`
	LimitPrice float64  `json:"limit_price"`
	Qty        float64  `json:"qty"`
	CreatedAt     time.Time `json:"created_at"`
	LastCheckTime time.Time `json:"last_check_time"`

	// StopLoss and TakeProfit are pre-computed for buy orders, to apply
	// to the resulting Position once the fill is observed.
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
}

// ClosedTrade is an append-only record of a position's full round trip,
// emitted when its protective exit order fills.
type ClosedTrade struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Qty        float64   `json:"qty"`
	PnL        float64   `json:"pnl"`
	OpenedAt   time.Time `json:"opened_at"`
	ClosedAt   time.Time `json:"closed_at"`
	Reason     string    `json:"reason"` // "take_profit", "stop_loss", "recreate_exhausted", "vanished"
}
