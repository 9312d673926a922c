package strategy

import "time"

// SymbolConfig tunes the HFT evaluator for a single symbol. Config.For
// returns a symbol's override as a whole when one exists and
// Config.Default otherwise; fields of an override are not merged with
// the default.
type SymbolConfig struct {
	// WarmupMinCount is how many quotes must be stored before the
	// evaluator will consider a symbol.
	WarmupMinCount int
	// EvaluateEveryQuotes debounces evaluation to once every N quotes.
	EvaluateEveryQuotes int
	// Lookback is how many quotes back the momentum edge is measured
	// against.
	Lookback int
	// MinEdgeBps is the minimum momentum move, in basis points over the
	// lookback window, required to emit a buy signal.
	MinEdgeBps float64
	// MaxSpreadBps rejects quotes whose bid/ask spread is too wide to
	// trade profitably.
	MaxSpreadBps float64
	// TakeProfitBps and StopLossBps are attached to every signal this
	// symbol emits.
	TakeProfitBps float64
	StopLossBps   float64
	// Staleness bounds how old the lookback baseline quote may be before
	// the edge computation is considered unreliable and skipped.
	Staleness time.Duration
	// CooldownQuotes is how many evaluation cycles to skip after a
	// signal has just fired for this symbol.
	CooldownQuotes int

	// GateRefreshQuotes is how many eligible quotes pass between
	// deferred advisory-gate refreshes, for the hybrid evaluator only.
	GateRefreshQuotes int
	// NoTradeCooldownQuotes is the cooldown applied when the advisory
	// gate answers "no", for the hybrid evaluator only.
	NoTradeCooldownQuotes int
}

// Config is the strategy engine's full tuning surface: a default
// applied to every symbol, with optional per-symbol overrides.
type Config struct {
	Default   SymbolConfig
	Overrides map[string]SymbolConfig
}

// For returns the effective SymbolConfig for symbol, preferring an
// override if one is configured.
func (c Config) For(symbol string) SymbolConfig {
	if c.Overrides != nil {
		if sc, ok := c.Overrides[symbol]; ok {
			return sc
		}
	}
	return c.Default
}

// DefaultSymbolConfig returns sane defaults matching the values named
// in the core's configuration reference.
func DefaultSymbolConfig() SymbolConfig {
	return SymbolConfig{
		WarmupMinCount:        20,
		EvaluateEveryQuotes:   1,
		Lookback:              10,
		MinEdgeBps:            5,
		MaxSpreadBps:          15,
		TakeProfitBps:         30,
		StopLossBps:           20,
		Staleness:             5 * time.Second,
		CooldownQuotes:        5,
		GateRefreshQuotes:     20,
		NoTradeCooldownQuotes: 10,
	}
}
