// Package main is the entry point for the corehft trading engine.
// It wires the event fabric, market store, strategy engine, execution
// path and position lifecycle manager into a single supervised core
// and runs it until signalled to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kestrel-trading/corehft/backend/config"
	"github.com/kestrel-trading/corehft/backend/engine"
	"github.com/kestrel-trading/corehft/backend/execution"
	"github.com/kestrel-trading/corehft/backend/marketdata/binance"
	"github.com/kestrel-trading/corehft/backend/marketdata/equities"
	"github.com/kestrel-trading/corehft/backend/strategy/llmgate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Starting corehft trading engine...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsLive() {
		log.Warn().Msg("LIVE TRADING MODE - real money at risk")
	} else {
		log.Info().Msg("paper trading mode (dry run)")
	}

	initialCash := 100000.0
	broker := execution.NewPaperBroker(initialCash)
	if err := broker.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to paper broker")
	}

	var advisor llmgate.Advisor
	if cfg.CoreHybrid {
		advisor = llmgate.NewHTTPAdvisor(cfg.CoreAdvisorBaseURL, cfg.CoreAdvisorAPIKey, cfg.CoreAdvisorModel)
	}
	core := engine.NewCore(broker, cfg.CoreConfig(advisor))

	ctxCore, cancelCore := context.WithCancel(context.Background())
	if err := core.Start(ctxCore); err != nil {
		log.Fatal().Err(err).Msg("Failed to start trading core")
	}

	var binanceStream *binance.Stream
	switch cfg.DataProvider {
	case "binance":
		binanceStream = binance.NewStream(core.Bus(), cfg.CoreSymbols)
		if err := binanceStream.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start binance quote stream, core will receive no quotes")
		}
	default:
		poller := equities.NewPoller(core.Bus(), cfg.CoreSymbols, 2*time.Second)
		go poller.Run(ctxCore)
	}
	log.Info().Strs("symbols", cfg.CoreSymbols).Bool("hybrid", cfg.CoreHybrid).Msg("trading core started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	if binanceStream != nil {
		binanceStream.Stop()
	}
	core.Stop()
	cancelCore()

	log.Info().Msg("trading core stopped")
}
