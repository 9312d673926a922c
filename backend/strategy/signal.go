package strategy

// Action is the directional intent carried by a Signal. The core only
// ever emits buy intents; exits are owned entirely by the position
// lifecycle manager.
type Action string

const (
	ActionBuy Action = "buy"
)

// Signal is the strategy engine's output: a buy intent for a symbol,
// carrying suggested TP/SL in basis points. Zero is applied as given:
// the execution path has no default to substitute, so a zero bps level
// is placed at the entry price.
type Signal struct {
	Symbol        string  `json:"symbol"`
	Action        Action  `json:"action"`
	TakeProfitBps float64 `json:"take_profit_bps"`
	StopLossBps   float64 `json:"stop_loss_bps"`
	StrategyName  string  `json:"strategy_name"`
	// Price is the quote mid the signal was emitted at, for logging.
	// The execution path does not use it; it always reads last_price
	// from the market store itself.
	Price float64 `json:"price,omitempty"`
}
