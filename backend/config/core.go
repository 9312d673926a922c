package config

import (
	"time"

	"github.com/kestrel-trading/corehft/backend/engine"
	"github.com/kestrel-trading/corehft/backend/execution"
	"github.com/kestrel-trading/corehft/backend/position"
	"github.com/kestrel-trading/corehft/backend/strategy"
	"github.com/kestrel-trading/corehft/backend/strategy/llmgate"
)

// StrategyConfig translates the Core* fields into the strategy engine's
// tuning surface. Per-symbol overrides are not sourced from environment
// variables; callers that need them can populate Overrides after the
// fact.
func (c *Config) StrategyConfig() strategy.Config {
	return strategy.Config{
		Default: strategy.SymbolConfig{
			WarmupMinCount:        c.CoreWarmupMinCount,
			EvaluateEveryQuotes:   c.CoreEvaluateEvery,
			Lookback:              c.CoreLookback,
			MinEdgeBps:            c.CoreMinEdgeBps,
			MaxSpreadBps:          c.CoreMaxSpreadBps,
			TakeProfitBps:         c.CoreTakeProfitBps,
			StopLossBps:           c.CoreStopLossBps,
			Staleness:             c.CoreStaleness,
			CooldownQuotes:        c.CoreCooldownQuotes,
			GateRefreshQuotes:     c.CoreGateRefreshQuotes,
			NoTradeCooldownQuotes: c.CoreNoTradeCooldownQuotes,
		},
	}
}

// ExecutorConfig translates the Core* fields into the execution path's
// tuning surface.
func (c *Config) ExecutorConfig() execution.ExecutorConfig {
	return execution.ExecutorConfig{
		MinOrderInterval: time.Duration(c.CoreMinOrderIntervalMs) * time.Millisecond,
		AggressionBps:    c.CoreAggressionBps,
		Sizing: execution.SizingConfig{
			TargetBalancePct: c.CoreTargetBalancePct,
			MinOrderAmount:   c.CoreMinOrderAmount,
			MaxOrderAmount:   c.CoreMaxOrderAmount,
		},
		AccountCacheTTL: time.Duration(c.CoreAccountCacheSecs) * time.Second,
		TimeInForce:     c.CoreTimeInForce,
	}
}

// PositionConfig translates the Core* fields into the position lifecycle
// manager's tuning surface.
func (c *Config) PositionConfig() position.Config {
	return position.Config{
		MaxRecreateAttempts: c.CoreMaxRecreateAttempts,
		RecreateBackoff:     time.Duration(c.CoreRecreateBackoffSecs) * time.Second,
		OrderCheckInterval:  time.Duration(c.CoreOrderCheckIntervalMs) * time.Millisecond,
		MonitorTickInterval: time.Duration(c.CoreMonitorTickSecs) * time.Second,
	}
}

// CoreConfig assembles the full engine.CoreConfig from the Core* fields.
// advisor may be nil when CoreHybrid is false.
func (c *Config) CoreConfig(advisor llmgate.Advisor) engine.CoreConfig {
	return engine.CoreConfig{
		HistoryLimit: c.CoreHistoryLimit,
		Strategy:     c.StrategyConfig(),
		Execution:    c.ExecutorConfig(),
		Position:     c.PositionConfig(),

		Hybrid:          c.CoreHybrid,
		Advisor:         advisor,
		GateConcurrency: c.CoreGateConcurrency,
		GateQueueSize:   c.CoreGateQueueSize,
		GateCallTimeout: c.CoreGateCallTimeout,
	}
}
