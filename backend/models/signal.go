package models

// SignalType represents the directional intent of a strategy's output.
type SignalType string

const (
	// SignalBuy indicates the strategy wants to open or add to a long position.
	SignalBuy SignalType = "buy"
	// SignalSell indicates the strategy wants to close or reduce a long position.
	SignalSell SignalType = "sell"
	// SignalHold indicates no action should be taken.
	SignalHold SignalType = "hold"
)

// SignalStrength represents the strategy's confidence in a signal.
type SignalStrength string

const (
	// SignalStrengthStrong indicates high confidence.
	SignalStrengthStrong SignalStrength = "strong"
	// SignalStrengthModerate indicates medium confidence.
	SignalStrengthModerate SignalStrength = "moderate"
	// SignalStrengthWeak indicates low confidence, typically paired with SignalHold.
	SignalStrengthWeak SignalStrength = "weak"
)

// Signal is the output of a strategy's evaluation of market data.
type Signal struct {
	// Symbol is the ticker symbol the signal applies to.
	Symbol string `json:"symbol"`
	// Type is the directional intent (buy/sell/hold).
	Type SignalType `json:"type"`
	// Strength is the strategy's confidence in the signal.
	Strength SignalStrength `json:"strength"`
	// Price is the reference price the signal was generated at. A
	// non-zero Price routes execution through a limit order.
	Price float64 `json:"price"`
	// Quantity is the size the strategy recommends trading, if known.
	Quantity float64 `json:"quantity"`
	// StopLoss is the suggested stop-loss price, if any.
	StopLoss float64 `json:"stop_loss,omitempty"`
	// TakeProfit is the suggested take-profit price, if any.
	TakeProfit float64 `json:"take_profit,omitempty"`
	// Reason is a human-readable explanation for the signal.
	Reason string `json:"reason,omitempty"`
	// StrategyName identifies which strategy produced the signal.
	StrategyName string `json:"strategy_name,omitempty"`
}
