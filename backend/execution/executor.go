package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/kestrel-trading/corehft/backend/ratelimit"
	"github.com/kestrel-trading/corehft/backend/tradeerr"
)

// OrderRequest is a not-yet-sized, not-yet-priced entry intent,
// published onto the event fabric by engine.Core's signal bridge and
// consumed here, where it is sized and priced.
type OrderRequest struct {
	Symbol        string
	Side          models.OrderSide
	TakeProfitBps float64
	StopLossBps   float64
	StrategyName  string
}

// ExecutionReport is published after every broker interaction the
// executor makes, successful or not, so the position lifecycle manager
// and any operator-facing listener can observe outcomes without
// polling.
type ExecutionReport struct {
	OrderID    string
	Symbol     string
	Side       models.OrderSide
	Status     models.OrderStatus
	FilledQty  float64
	FillPrice  float64
	Err        error
	ReportedAt time.Time
}

// PendingOrderRegistrar is implemented by the position lifecycle
// manager's tracker. The executor only needs to hand off the pending
// order it just created; it never reads tracker state back.
type PendingOrderRegistrar interface {
	RegisterPendingOrder(models.PendingOrder)
}

// ExecutorConfig tunes the execution path's broker-facing behavior.
type ExecutorConfig struct {
	MinOrderInterval time.Duration
	AggressionBps    float64
	Sizing           SizingConfig
	AccountCacheTTL  time.Duration
	TimeInForce      string // "day", "ioc", or "gtc"
}

// Executor is the event-driven implementation of the execution path: it
// subscribes to Order.Request events and, per request, rate-limits,
// discovers the price, sizes the order, prices it aggressively, submits
// it to the broker, and registers the resulting pending order.
type Executor struct {
	broker  Broker
	store   *marketstore.Store
	bus     *eventbus.Bus
	gate    *ratelimit.Gate
	sizer   *Sizer
	pricer  *Pricer
	account *AccountCache
	cfg     ExecutorConfig

	registrar PendingOrderRegistrar
}

// NewExecutor wires an Executor. registrar receives every pending order
// created from a successful submission.
func NewExecutor(broker Broker, store *marketstore.Store, bus *eventbus.Bus, cfg ExecutorConfig, registrar PendingOrderRegistrar) *Executor {
	return &Executor{
		broker:    broker,
		store:     store,
		bus:       bus,
		gate:      ratelimit.NewGate(cfg.MinOrderInterval),
		sizer:     NewSizer(cfg.Sizing),
		pricer:    NewPricer(cfg.AggressionBps),
		account:   NewAccountCache(broker, cfg.AccountCacheTTL),
		cfg:       cfg,
		registrar: registrar,
	}
}

// Run subscribes to Order.Request events and processes them until ctx
// is cancelled.
func (ex *Executor) Run(ctx context.Context) {
	sub := ex.bus.Subscribe(eventbus.KindOrderRequest)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			req, ok := evt.Payload.(OrderRequest)
			if !ok {
				continue
			}
			ex.handle(ctx, req)
		}
	}
}

// handle runs the seven-step execution path for a single request.
// Failure semantics per step match the execution path contract: a
// rate-limit miss is a silent drop, price-unavailable and
// insufficient-funds are logged and abandoned, broker rejects are
// reported but not retried here.
func (ex *Executor) handle(ctx context.Context, req OrderRequest) {
	// Step 1: rate limit.
	if !ex.gate.Allow(req.Symbol) {
		return
	}

	// Step 2: price discovery.
	lastPrice, err := ex.store.LastPrice(req.Symbol)
	if err != nil {
		log.Warn().Str("symbol", req.Symbol).Err(err).Msg("execution abandoned: no market data")
		return
	}

	quote, haveQuote := ex.store.LastQuote(req.Symbol)
	if !haveQuote {
		log.Warn().Str("symbol", req.Symbol).Msg("execution abandoned: no quote for pricing")
		return
	}

	// Step 4: account cache (buying power).
	balance, err := ex.account.Balance()
	if err != nil {
		log.Warn().Str("symbol", req.Symbol).Err(err).Msg("execution abandoned: account fetch failed")
		return
	}

	// Step 3: sizing.
	notional, err := ex.sizer.ComputeNotional(balance.BuyingPower)
	if err != nil {
		log.Warn().Str("symbol", req.Symbol).Err(err).Msg("execution abandoned: insufficient funds")
		return
	}
	qty := ex.sizer.Quantity(notional, lastPrice)
	if qty <= 0 {
		log.Warn().Str("symbol", req.Symbol).Msg("execution abandoned: computed zero quantity")
		return
	}

	// Step 5: aggressive limit pricing.
	limitPrice := ex.pricer.AggressiveLimitPrice(quote, req.Side)

	// Step 6: submit.
	order := models.Order{
		Symbol:   req.Symbol,
		Side:     req.Side,
		Type:     models.OrderTypeLimit,
		Quantity: qty,
		Price:    limitPrice,
		Status:   models.OrderStatusPending,
	}

	placed, err := ex.broker.PlaceOrder(order)
	if err != nil {
		log.Error().Str("symbol", req.Symbol).Err(err).Msg("broker rejected order")
		ex.bus.Publish(eventbus.KindExecutionReport, ExecutionReport{
			Symbol:     req.Symbol,
			Side:       req.Side,
			Status:     models.OrderStatusRejected,
			Err:        fmt.Errorf("%w: %v", tradeerr.ErrOrderRejected, err),
			ReportedAt: time.Now(),
		})
		return
	}

	stopLoss, takeProfit := entryExitLevels(limitPrice, req.Side, req.TakeProfitBps, req.StopLossBps)

	ex.registrar.RegisterPendingOrder(models.PendingOrder{
		OrderID:       placed.ID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		LimitPrice:    limitPrice,
		Qty:           qty,
		CreatedAt:     time.Now(),
		LastCheckTime: time.Now(),
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
	})

	ex.bus.Publish(eventbus.KindExecutionReport, ExecutionReport{
		OrderID:    placed.ID,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Status:     placed.Status,
		FilledQty:  placed.FilledQuantity,
		FillPrice:  placed.AveragePrice,
		ReportedAt: time.Now(),
	})
}

// entryExitLevels converts TP/SL basis points relative to the entry
// price into absolute prices, for a buy entry.
func entryExitLevels(entryPrice float64, side models.OrderSide, takeProfitBps, stopLossBps float64) (stopLoss, takeProfit float64) {
	if side != models.OrderSideBuy {
		return 0, 0
	}
	stopLoss = entryPrice * (1 - stopLossBps/10000)
	takeProfit = entryPrice * (1 + takeProfitBps/10000)
	return stopLoss, takeProfit
}
