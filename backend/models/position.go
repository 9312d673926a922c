package models

import (
	"time"
)

// Position represents a current holding in a symbol.
type Position struct {
	// Symbol is the ticker symbol.
	Symbol string `json:"symbol" db:"symbol"`
	// Quantity is the number of units held.
	Quantity float64 `json:"quantity" db:"quantity"`
	// AverageCost is the average cost basis per unit.
	AverageCost float64 `json:"average_cost" db:"average_cost"`
	// CurrentPrice is the current market price.
	CurrentPrice float64 `json:"current_price" db:"current_price"`
	// MarketValue is the current market value (Quantity * CurrentPrice).
	MarketValue float64 `json:"market_value" db:"market_value"`
	// UnrealizedPL is the unrealized profit/loss.
	UnrealizedPL float64 `json:"unrealized_pl" db:"unrealized_pl"`
	// UpdatedAt is when the position was last updated.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Side is the position direction. The lifecycle manager only ever
	// opens "buy" positions; short selling is out of scope.
	Side OrderSide `json:"side,omitempty" db:"side"`
	// EntryPrice is the fill price of the entry order.
	EntryPrice float64 `json:"entry_price,omitempty" db:"entry_price"`
	// EntryTime is when the entry order filled.
	EntryTime time.Time `json:"entry_time,omitempty" db:"entry_time"`
	// StopLoss is the price at which the position is market-sold.
	StopLoss float64 `json:"stop_loss,omitempty" db:"stop_loss"`
	// TakeProfit is the price of the live protective limit sell.
	TakeProfit float64 `json:"take_profit,omitempty" db:"take_profit"`
	// IsClosing is true once an exit has been initiated, guarding
	// against re-entry while the position winds down.
	IsClosing bool `json:"is_closing,omitempty" db:"is_closing"`
	// OpenOrderID is the id of the live protective TP limit order, if any.
	OpenOrderID string `json:"open_order_id,omitempty" db:"open_order_id"`
	// LastRecreateAttempt is when the exit order was last (re)created.
	LastRecreateAttempt time.Time `json:"last_recreate_attempt,omitempty" db:"last_recreate_attempt"`
	// RecreateAttempts counts exit-order recreation attempts for this
	// position. It is not reset when a placement succeeds; the position
	// is abandoned once this reaches the configured maximum.
	RecreateAttempts int `json:"recreate_attempts,omitempty" db:"recreate_attempts"`
}

// Clone returns a deep copy, safe to read after the tracker's lock is
// released.
func (p Position) Clone() Position {
	return p
}

// Balance represents account balance information.
type Balance struct {
	// Cash is the available cash balance.
	Cash float64 `json:"cash" db:"cash"`
	// Equity is the total account equity.
	Equity float64 `json:"equity" db:"equity"`
	// BuyingPower is the available buying power.
	BuyingPower float64 `json:"buying_power" db:"buying_power"`
	// PortfolioValue is the total portfolio value.
	PortfolioValue float64 `json:"portfolio_value" db:"portfolio_value"`
	// UpdatedAt is when the balance was last updated.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
