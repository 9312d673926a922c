package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/execution"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/kestrel-trading/corehft/backend/position"
	"github.com/kestrel-trading/corehft/backend/strategy"
	"github.com/kestrel-trading/corehft/backend/strategy/llmgate"
)

// quoteEvaluator is satisfied by both strategy.HFTEvaluator and
// strategy.HybridEvaluator.
type quoteEvaluator interface {
	OnQuote(models.Quote)
}

// CoreConfig is the full tuning surface for the event-driven core: the
// event fabric, market store, strategy engine, execution path and
// position lifecycle manager wired together.
type CoreConfig struct {
	HistoryLimit int
	Strategy     strategy.Config
	Execution    execution.ExecutorConfig
	Position     position.Config

	// Hybrid switches the strategy engine to the LLM-gated evaluator.
	// Advisor must be non-nil when Hybrid is true.
	Hybrid          bool
	Advisor         llmgate.Advisor
	GateConcurrency int
	GateQueueSize   int
	GateCallTimeout time.Duration
}

// Core is the event-driven trading core described by the position/
// strategy/execution packages: a single event fabric connecting a
// strategy evaluator, the execution path, and the position lifecycle
// manager to whatever market-data adapters publish quotes onto it.
type Core struct {
	bus       *eventbus.Bus
	store     *marketstore.Store
	tracker   *position.Tracker
	posMgr    *position.Manager
	executor  *execution.Executor
	evaluator quoteEvaluator

	cancel context.CancelFunc
}

// NewCore wires a Core around broker using cfg. The returned Core is
// not yet running; call Start.
func NewCore(broker execution.Broker, cfg CoreConfig) *Core {
	bus := eventbus.New()
	store := marketstore.New(cfg.HistoryLimit)
	tracker := position.NewTracker()

	posMgr := position.NewManager(broker, bus, store, tracker, cfg.Position)
	executor := execution.NewExecutor(broker, store, bus, cfg.Execution, tracker)

	var evaluator quoteEvaluator
	if cfg.Hybrid && cfg.Advisor != nil {
		gate := llmgate.New(cfg.Advisor, cfg.GateConcurrency, cfg.GateQueueSize, cfg.GateCallTimeout)
		evaluator = strategy.NewHybridEvaluator(store, bus, cfg.Strategy, tracker, gate)
	} else {
		evaluator = strategy.NewHFTEvaluator(store, bus, cfg.Strategy, tracker)
	}

	return &Core{
		bus:       bus,
		store:     store,
		tracker:   tracker,
		posMgr:    posMgr,
		executor:  executor,
		evaluator: evaluator,
	}
}

// Bus exposes the event fabric so market-data adapters can publish
// quotes and trades onto it directly.
func (c *Core) Bus() *eventbus.Bus {
	return c.bus
}

// Store exposes the market store, mainly for diagnostics and tests.
func (c *Core) Store() *marketstore.Store {
	return c.store
}

// Tracker exposes the position tracker, mainly for diagnostics and
// tests.
func (c *Core) Tracker() *position.Tracker {
	return c.tracker
}

// Start imports existing broker holdings, then launches the quote
// ingestion loop, the strategy-to-order-request bridge, the execution
// path, and the position lifecycle manager's subscriber loops. It
// returns once everything is running; the loops themselves run until
// Stop is called.
func (c *Core) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel

	if err := c.posMgr.StartupSync(ctx); err != nil {
		log.Error().Err(err).Msg("startup sync with broker holdings failed, continuing with an empty tracker")
	}

	c.posMgr.Start(ctx)
	go c.executor.Run(ctx)
	go c.consumeQuotes(ctx)
	go c.consumeSignals(ctx)

	return nil
}

// Stop cancels every subscriber loop started by Start.
func (c *Core) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// consumeQuotes is the single place that owns market-store writes: it
// pushes every incoming quote into the store and then hands it to the
// strategy evaluator, guaranteeing the evaluator always reads a store
// that already contains the quote currently under evaluation.
func (c *Core) consumeQuotes(ctx context.Context) {
	sub := c.bus.Subscribe(eventbus.KindMarketQuote)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			q, ok := evt.Payload.(models.Quote)
			if !ok {
				continue
			}
			c.store.PushQuote(q)
			c.evaluator.OnQuote(q)
		}
	}
}

// consumeSignals bridges Signal events into Order.Request events, the
// seam between the strategy engine and the execution path.
func (c *Core) consumeSignals(ctx context.Context) {
	sub := c.bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			sig, ok := evt.Payload.(strategy.Signal)
			if !ok {
				continue
			}
			c.bus.Publish(eventbus.KindOrderRequest, execution.OrderRequest{
				Symbol:        sig.Symbol,
				Side:          models.OrderSideBuy,
				TakeProfitBps: sig.TakeProfitBps,
				StopLossBps:   sig.StopLossBps,
				StrategyName:  sig.StrategyName,
			})
		}
	}
}
