// Package config provides configuration management for the corehft trading engine.
// It loads settings from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TradingMode represents the operating mode of the trading engine.
type TradingMode string

const (
	// ModeDryRun indicates paper trading mode (no real money).
	ModeDryRun TradingMode = "dry_run"
	// ModeLive indicates live trading mode with real money.
	ModeLive TradingMode = "live"
)

// validLogLevels is the set of accepted zerolog log levels.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true,
	"panic": true, "disabled": true,
}

// validProviders is the set of accepted data provider names.
var validProviders = map[string]bool{
	"yahoo": true, "binance": true,
}

// ValidationError holds multiple configuration validation errors.
// It aggregates all issues so operators can fix everything in one pass.
type ValidationError struct {
	// Errors is the list of individual validation error messages.
	Errors []string
}

// Error returns a formatted multi-line error message listing all issues.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%d configuration error(s):\n  - %s",
		len(ve.Errors), strings.Join(ve.Errors, "\n  - "))
}

// Config holds all configuration for the corehft application.
type Config struct {
	// Trading settings
	TradingMode TradingMode

	// Logging
	LogLevel string

	// Data Provider settings
	BinanceAPIKey    string
	BinanceAPISecret string
	UseBinanceUS     bool // Set to true for US users (geo-restricted from binance.com)

	DataProvider string // Selected data provider (yahoo, binance)

	// Shutdown settings
	ShutdownTimeout time.Duration // Maximum time for graceful shutdown (default: 30s)

	// Core engine settings: symbols traded and the strategy/execution/
	// position lifecycle tuning surface. These fields only set the
	// strategy defaults; per-symbol overrides are not loaded from the
	// environment.
	CoreSymbols []string

	CoreHistoryLimit   int
	CoreWarmupMinCount int
	CoreEvaluateEvery  int
	CoreLookback       int
	CoreMinEdgeBps     float64
	CoreMaxSpreadBps   float64
	CoreTakeProfitBps  float64
	CoreStopLossBps    float64
	CoreCooldownQuotes int
	CoreStaleness      time.Duration

	CoreHybrid                bool
	CoreGateRefreshQuotes     int
	CoreNoTradeCooldownQuotes int
	CoreGateConcurrency       int
	CoreGateQueueSize         int
	CoreGateCallTimeout       time.Duration

	CoreMinOrderIntervalMs int
	CoreTargetBalancePct   float64
	CoreMinOrderAmount     float64
	CoreMaxOrderAmount     float64
	CoreAggressionBps      float64
	CoreAccountCacheSecs   int
	CoreTimeInForce        string

	CoreMaxRecreateAttempts  int
	CoreRecreateBackoffSecs  int
	CoreOrderCheckIntervalMs int
	CoreBrokerCallTimeoutMs  int
	CoreMonitorTickSecs      int

	// CoreAdvisorBaseURL configures the hybrid evaluator's advisory gate.
	// It is required when CoreHybrid is set: Validate rejects an empty
	// value in hybrid mode.
	CoreAdvisorBaseURL string
	CoreAdvisorAPIKey  string
	CoreAdvisorModel   string
}

// Load reads configuration from environment variables and .env files.
// It returns a Config struct populated with all settings.
//
// Returns:
//   - *Config: The loaded configuration
//   - error: Any error encountered during loading
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	config := &Config{
		TradingMode: TradingMode(getEnv("TRADING_MODE", "dry_run")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Binance credentials
		BinanceAPIKey:    os.Getenv("BINANCE_API_KEY"),
		BinanceAPISecret: os.Getenv("BINANCE_API_SECRET"),
		UseBinanceUS:     getEnv("BINANCE_USE_US", "true") == "true", // Default to US for safety

		DataProvider: getEnv("DATA_PROVIDER", "yahoo"),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Core engine settings
		CoreSymbols: parseStrategies(getEnv("CORE_SYMBOLS", "BTCUSDT")),

		CoreHistoryLimit:   getEnvInt("CORE_HISTORY_LIMIT", 50),
		CoreWarmupMinCount: getEnvInt("CORE_WARMUP_MIN_COUNT", 20),
		CoreEvaluateEvery:  getEnvInt("CORE_EVALUATE_EVERY_QUOTES", 1),
		CoreLookback:       getEnvInt("CORE_LOOKBACK", 10),
		CoreMinEdgeBps:     getEnvFloat("CORE_MIN_EDGE_BPS", 5),
		CoreMaxSpreadBps:   getEnvFloat("CORE_MAX_SPREAD_BPS", 15),
		CoreTakeProfitBps:  getEnvFloat("CORE_TAKE_PROFIT_BPS", 30),
		CoreStopLossBps:    getEnvFloat("CORE_STOP_LOSS_BPS", 20),
		CoreCooldownQuotes: getEnvInt("CORE_COOLDOWN_QUOTES", 5),
		CoreStaleness:      getEnvDuration("CORE_STALENESS", 5*time.Second),

		CoreHybrid:                getEnv("CORE_HYBRID", "false") == "true",
		CoreGateRefreshQuotes:     getEnvInt("CORE_GATE_REFRESH_QUOTES", 20),
		CoreNoTradeCooldownQuotes: getEnvInt("CORE_NO_TRADE_COOLDOWN_QUOTES", 10),
		CoreGateConcurrency:       getEnvInt("CORE_GATE_CONCURRENCY", 3),
		CoreGateQueueSize:         getEnvInt("CORE_GATE_QUEUE_SIZE", 100),
		CoreGateCallTimeout:       getEnvDuration("CORE_GATE_CALL_TIMEOUT", 2*time.Second),

		CoreMinOrderIntervalMs: getEnvInt("CORE_MIN_ORDER_INTERVAL_MS", 250),
		CoreTargetBalancePct:   getEnvFloat("CORE_TARGET_BALANCE_PCT", 0.1),
		CoreMinOrderAmount:     getEnvFloat("CORE_MIN_ORDER_AMOUNT", 10),
		CoreMaxOrderAmount:     getEnvFloat("CORE_MAX_ORDER_AMOUNT", 1000),
		CoreAggressionBps:      getEnvFloat("CORE_AGGRESSION_BPS", 5),
		CoreAccountCacheSecs:   getEnvInt("CORE_ACCOUNT_CACHE_SECS", 15),
		CoreTimeInForce:        getEnv("CORE_TIME_IN_FORCE", "gtc"),

		CoreMaxRecreateAttempts:  getEnvInt("CORE_MAX_RECREATE_ATTEMPTS", 3),
		CoreRecreateBackoffSecs:  getEnvInt("CORE_RECREATE_BACKOFF_SECS", 30),
		CoreOrderCheckIntervalMs: getEnvInt("CORE_ORDER_CHECK_INTERVAL_MS", 2000),
		CoreBrokerCallTimeoutMs:  getEnvInt("CORE_BROKER_CALL_TIMEOUT_MS", 5000),
		CoreMonitorTickSecs:      getEnvInt("CORE_MONITOR_TICK_SECS", 5),

		CoreAdvisorBaseURL: getEnv("CORE_ADVISOR_BASE_URL", ""),
		CoreAdvisorAPIKey:  os.Getenv("CORE_ADVISOR_API_KEY"),
		CoreAdvisorModel:   getEnv("CORE_ADVISOR_MODEL", "gpt-4o-mini"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs comprehensive configuration validation with fail-fast behavior.
// It checks trading mode, data provider credentials, log level, and the core
// engine's tuning surface. All errors are aggregated and returned as a single
// ValidationError so operators can fix everything in one pass.
//
// Returns:
//   - error: ValidationError if any checks fail, nil otherwise
func (c *Config) Validate() error {
	var errs []string

	if c.TradingMode != ModeDryRun && c.TradingMode != ModeLive {
		errs = append(errs,
			fmt.Sprintf("invalid TRADING_MODE '%s': must be 'dry_run' or 'live'", c.TradingMode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs,
			fmt.Sprintf("invalid LOG_LEVEL '%s': must be one of trace, debug, info, warn, error, fatal, panic, disabled", c.LogLevel))
	}

	if !validProviders[c.DataProvider] {
		errs = append(errs,
			fmt.Sprintf("invalid DATA_PROVIDER '%s': must be one of yahoo, binance", c.DataProvider))
	} else {
		errs = append(errs, c.validateProvider()...)
	}

	errs = append(errs, c.validateCore()...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// validateProvider checks that provider-specific credentials are present.
// Called only after the provider name itself has been validated.
//
// Returns:
//   - []string: List of error messages (empty if valid)
func (c *Config) validateProvider() []string {
	var errs []string

	switch c.DataProvider {
	case "binance":
		if c.BinanceAPIKey == "" {
			errs = append(errs,
				"Binance provider requires BINANCE_API_KEY: set BINANCE_API_KEY in .env")
		}
		if c.BinanceAPISecret == "" {
			errs = append(errs,
				"Binance provider requires BINANCE_API_SECRET: set BINANCE_API_SECRET in .env")
		}
	}
	// yahoo requires no credentials

	return errs
}

// validateCore checks the event-driven core's tuning surface.
func (c *Config) validateCore() []string {
	var errs []string

	if len(c.CoreSymbols) == 0 {
		errs = append(errs, "CORE_SYMBOLS is empty: set at least one symbol, e.g. CORE_SYMBOLS=BTCUSDT")
	}

	if c.CoreTargetBalancePct <= 0 || c.CoreTargetBalancePct > 1 {
		errs = append(errs,
			fmt.Sprintf("invalid CORE_TARGET_BALANCE_PCT %v: must be between 0 and 1", c.CoreTargetBalancePct))
	}

	if c.CoreMinOrderAmount > 0 && c.CoreMaxOrderAmount > 0 && c.CoreMinOrderAmount > c.CoreMaxOrderAmount {
		errs = append(errs,
			fmt.Sprintf("invalid CORE_MIN_ORDER_AMOUNT %v: must not exceed CORE_MAX_ORDER_AMOUNT %v", c.CoreMinOrderAmount, c.CoreMaxOrderAmount))
	}

	if c.CoreMaxRecreateAttempts < 0 {
		errs = append(errs,
			fmt.Sprintf("invalid CORE_MAX_RECREATE_ATTEMPTS %d: must be non-negative", c.CoreMaxRecreateAttempts))
	}

	if c.CoreHybrid && c.CoreGateConcurrency <= 0 {
		errs = append(errs,
			fmt.Sprintf("invalid CORE_GATE_CONCURRENCY %d: must be positive when CORE_HYBRID is enabled", c.CoreGateConcurrency))
	}

	if c.CoreHybrid && c.CoreAdvisorBaseURL == "" {
		errs = append(errs,
			"CORE_HYBRID is enabled but CORE_ADVISOR_BASE_URL is empty: set it to an OpenAI-compatible endpoint")
	}

	return errs
}

// IsDryRun returns true if the engine is in paper trading mode.
func (c *Config) IsDryRun() bool {
	return c.TradingMode == ModeDryRun
}

// IsLive returns true if the engine is in live trading mode.
func (c *Config) IsLive() bool {
	return c.TradingMode == ModeLive
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves an environment variable as a time.Duration or returns a default.
// The value should be a Go duration string (e.g., "30s", "5m", "1h").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// parseStrategies parses a comma-separated list of strategy names.
func parseStrategies(strategiesStr string) []string {
	if strategiesStr == "" {
		return []string{}
	}

	// Split by comma and trim whitespace
	parts := []string{}
	for _, part := range splitAndTrim(strategiesStr, ",") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// splitAndTrim splits a string by delimiter and trims whitespace.
func splitAndTrim(s, delimiter string) []string {
	var result []string
	for i := 0; i < len(s); {
		// Find next delimiter
		idx := i
		for idx < len(s) && string(s[idx]) != delimiter {
			idx++
		}
		// Extract and trim the part
		part := s[i:idx]
		// Manual trim
		for len(part) > 0 && (part[0] == ' ' || part[0] == '\t' || part[0] == '\n' || part[0] == '\r') {
			part = part[1:]
		}
		for len(part) > 0 && (part[len(part)-1] == ' ' || part[len(part)-1] == '\t' || part[len(part)-1] == '\n' || part[len(part)-1] == '\r') {
			part = part[:len(part)-1]
		}
		if part != "" {
			result = append(result, part)
		}
		// Move past the delimiter
		i = idx
		if i < len(s) {
			i++ // Skip delimiter
		}
	}
	return result
}
