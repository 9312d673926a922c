package execution

import (
	"github.com/shopspring/decimal"

	"github.com/kestrel-trading/corehft/backend/tradeerr"
)

// SizingConfig bounds how much notional a single entry order may use.
type SizingConfig struct {
	// TargetBalancePct is the fraction of buying power a single entry
	// targets, before clamping (e.g. 0.1 for 10%).
	TargetBalancePct float64
	MinOrderAmount   float64
	MaxOrderAmount   float64
}

// Sizer turns the cached account's buying power into a notional
// dollar amount to spend, using shopspring/decimal throughout so the
// clamp arithmetic never drifts the way float64 would across repeated
// ticks.
type Sizer struct {
	cfg SizingConfig
}

// NewSizer creates a Sizer bound by cfg.
func NewSizer(cfg SizingConfig) *Sizer {
	return &Sizer{cfg: cfg}
}

// ComputeNotional implements the sizing algorithm: target a percentage
// of buying power, clamp into [min_order_amount, max_order_amount], and
// never risk more than 95% of buying power regardless of the configured
// max. Returns tradeerr.ErrInsufficientFunds if that 95% cap pulls the
// notional below min_order_amount.
func (s *Sizer) ComputeNotional(buyingPower float64) (float64, error) {
	bp := decimal.NewFromFloat(buyingPower)
	target := bp.Mul(decimal.NewFromFloat(s.cfg.TargetBalancePct))

	min := decimal.NewFromFloat(s.cfg.MinOrderAmount)
	max := decimal.NewFromFloat(s.cfg.MaxOrderAmount)

	if target.LessThan(min) {
		target = min
	}
	if s.cfg.MaxOrderAmount > 0 && target.GreaterThan(max) {
		target = max
	}

	safetyCap := bp.Mul(decimal.NewFromFloat(0.95))
	if target.GreaterThan(safetyCap) {
		target = safetyCap
	}

	if target.LessThan(min) {
		return 0, tradeerr.ErrInsufficientFunds
	}

	notional, _ := target.Float64()
	return notional, nil
}

// Quantity converts a notional dollar amount into a unit quantity at
// price, rounded down to 8 decimal places (enough headroom for both
// equities and crypto-sized lots).
func (s *Sizer) Quantity(notional, price float64) float64 {
	if price <= 0 {
		return 0
	}
	qty := decimal.NewFromFloat(notional).Div(decimal.NewFromFloat(price))
	qty = qty.Truncate(8)
	f, _ := qty.Float64()
	return f
}
