package position

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/execution"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
)

// Config tunes the lifecycle manager's retry and polling behavior.
type Config struct {
	// MaxRecreateAttempts is the retry cap before an unrecoverable
	// position is abandoned.
	MaxRecreateAttempts int
	// RecreateBackoff is the minimum interval between successive exit
	// order (re)creation attempts for the same position.
	RecreateBackoff time.Duration
	// OrderCheckInterval throttles how often a pending order's broker
	// state is polled.
	OrderCheckInterval time.Duration
	// MonitorTickInterval is the periodic fallback monitor tick, run in
	// addition to the quote-driven tick so symbols with no fresh quotes
	// still get checked.
	MonitorTickInterval time.Duration
}

// DefaultConfig returns the lifecycle manager's documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxRecreateAttempts: 3,
		RecreateBackoff:     30 * time.Second,
		OrderCheckInterval:  2 * time.Second,
		MonitorTickInterval: 5 * time.Second,
	}
}

// Manager is the position lifecycle manager: it reacts to execution
// reports to open positions and maintain protective exits, and runs a
// monitor tick (quote-driven, with a periodic fallback) that enforces
// stop-losses and self-heals orphaned state.
type Manager struct {
	broker  execution.Broker
	bus     *eventbus.Bus
	store   *marketstore.Store
	tracker *Tracker
	cfg     Config
}

// NewManager wires a Manager around the given broker, event fabric,
// market store and tracker.
func NewManager(broker execution.Broker, bus *eventbus.Bus, store *marketstore.Store, tracker *Tracker, cfg Config) *Manager {
	return &Manager{broker: broker, bus: bus, store: store, tracker: tracker, cfg: cfg}
}

// Tracker returns the manager's tracker, e.g. to satisfy
// strategy.PositionChecker or execution.PendingOrderRegistrar at wiring
// time.
func (m *Manager) Tracker() *Tracker {
	return m.tracker
}

// Start launches the manager's subscriber loops. It returns
// immediately; the loops run until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go m.consumeExecutionReports(ctx)
	go m.consumeQuotes(ctx)
	go m.runFallbackTicker(ctx)
}

func (m *Manager) consumeExecutionReports(ctx context.Context) {
	sub := m.bus.Subscribe(eventbus.KindExecutionReport)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			report, ok := evt.Payload.(execution.ExecutionReport)
			if !ok {
				continue
			}
			m.onExecutionReport(report)
		}
	}
}

func (m *Manager) consumeQuotes(ctx context.Context) {
	sub := m.bus.Subscribe(eventbus.KindMarketQuote)
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
			m.monitorTick(q.Symbol)
		}
	}
}

// runFallbackTicker ensures positions whose symbol has gone quiet (no
// fresh quotes) are still monitored, answering spec's open question in
// favor of quote-driven-primary with a periodic backstop rather than
// either extreme alone.
func (m *Manager) runFallbackTicker(ctx context.Context) {
	interval := m.cfg.MonitorTickInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range m.tracker.AllPositions() {
				m.monitorTick(p.Symbol)
			}
		}
	}
}

// StartupSync imports broker holdings with no matching tracked position
// as newly-discovered positions with no known protective order; the
// next monitor tick's orphan check drives exit-order creation for them
// through the same self-healing path used at runtime.
func (m *Manager) StartupSync(ctx context.Context) error {
	holdings, err := m.broker.GetHoldings()
	if err != nil {
		return err
	}

	for _, h := range holdings {
		if h.Qty <= 0 {
			continue
		}
		if _, exists := m.tracker.Position(h.Symbol); exists {
			continue
		}
		m.tracker.SetPosition(models.Position{
			Symbol:      h.Symbol,
			Quantity:    h.Qty,
			AverageCost: h.AvgEntryPrice,
			EntryPrice:  h.AvgEntryPrice,
			Side:        models.OrderSideBuy,
			EntryTime:   time.Now(),
		})
		log.Info().Str("symbol", h.Symbol).Float64("qty", h.Qty).Msg("imported broker holding at startup")
	}
	return nil
}

func (m *Manager) onExecutionReport(r execution.ExecutionReport) {
	switch r.Status {
	case models.OrderStatusFilled:
		m.onFill(r)
	case models.OrderStatusCancelled, models.OrderStatusRejected:
		m.onCancelOrReject(r)
	}
}

// onFill handles a filled pending order: an entry fill opens a
// position and requests its protective TP order; an exit fill (the TP
// order itself) closes the position and emits a closed-trade record.
func (m *Manager) onFill(r execution.ExecutionReport) {
	pending, ok := m.tracker.PendingOrder(r.OrderID)
	if !ok {
		return
	}
	m.tracker.RemovePendingOrder(r.OrderID)

	filledQty := r.FilledQty
	if filledQty <= 0 {
		filledQty = pending.Qty
	}
	if diff := math.Abs(filledQty - pending.Qty); diff > 1e-6 {
		log.Warn().
			Str("symbol", pending.Symbol).
			Float64("requested_qty", pending.Qty).
			Float64("filled_qty", filledQty).
			Msg("filled quantity diverged from requested quantity")
	}

	if pending.Side == models.OrderSideBuy {
		m.openPosition(pending, r, filledQty)
		return
	}

	m.closePosition(pending.Symbol, r.FillPrice, "take_profit")
}

func (m *Manager) openPosition(pending models.PendingOrder, r execution.ExecutionReport, filledQty float64) {
	entryPrice := r.FillPrice
	if entryPrice <= 0 {
		entryPrice = pending.LimitPrice
	}

	pos := models.Position{
		Symbol:      pending.Symbol,
		Quantity:    filledQty,
		AverageCost: entryPrice,
		EntryPrice:  entryPrice,
		EntryTime:   time.Now(),
		Side:        models.OrderSideBuy,
		StopLoss:    pending.StopLoss,
		TakeProfit:  pending.TakeProfit,
	}
	m.tracker.SetPosition(pos)
	m.placeProtectiveTP(pos)
}

// placeProtectiveTP places a sell limit order at the position's
// take-profit price for the full filled quantity and records its id as
// open_order_id. A placement failure here is not fatal: the next
// monitor tick's orphan check (open_order_id still empty) drives
// recreation through the same path.
func (m *Manager) placeProtectiveTP(pos models.Position) {
	order := models.Order{
		Symbol:   pos.Symbol,
		Side:     models.OrderSideSell,
		Type:     models.OrderTypeLimit,
		Quantity: pos.Quantity,
		Price:    pos.TakeProfit,
		Status:   models.OrderStatusPending,
	}

	placed, err := m.broker.PlaceOrder(order)
	if err != nil {
		log.Error().Str("symbol", pos.Symbol).Err(err).Msg("failed to place protective take-profit order")
		return
	}

	m.tracker.MutatePosition(pos.Symbol, func(p models.Position) (models.Position, bool) {
		p.OpenOrderID = placed.ID
		return p, true
	})
	m.tracker.RegisterPendingOrder(models.PendingOrder{
		OrderID:       placed.ID,
		Symbol:        pos.Symbol,
		Side:          models.OrderSideSell,
		LimitPrice:    pos.TakeProfit,
		Qty:           pos.Quantity,
		CreatedAt:     time.Now(),
		LastCheckTime: time.Now(),
	})
}

// onCancelOrReject handles a terminal non-fill outcome for a tracked
// pending order. For the protective TP order this clears open_order_id
// and immediately invokes exit-order recreation.
func (m *Manager) onCancelOrReject(r execution.ExecutionReport) {
	pending, ok := m.tracker.PendingOrder(r.OrderID)
	if !ok {
		return
	}
	m.tracker.RemovePendingOrder(r.OrderID)

	if pending.Side != models.OrderSideSell {
		return
	}

	m.tracker.MutatePosition(pending.Symbol, func(p models.Position) (models.Position, bool) {
		p.OpenOrderID = ""
		return p, true
	})

	if pos, ok := m.tracker.Position(pending.Symbol); ok && !pos.IsClosing {
		m.recreateExitOrder(pos)
	}
}

// closePosition removes a position and emits a closed-trade record.
func (m *Manager) closePosition(symbol string, exitPrice float64, reason string) {
	pos, ok := m.tracker.Position(symbol)
	m.tracker.RemovePosition(symbol)
	if !ok {
		return
	}

	qty := pos.Quantity
	pnl := (exitPrice - pos.EntryPrice) * qty

	m.bus.Publish(eventbus.KindClosedTrade, models.ClosedTrade{
		ID:         uuid.NewString(),
		Symbol:     symbol,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Qty:        qty,
		PnL:        pnl,
		OpenedAt:   pos.EntryTime,
		ClosedAt:   time.Now(),
		Reason:     reason,
	})
}

// monitorTick runs the four-part check for the tracked
// position on symbol, if any.
func (m *Manager) monitorTick(symbol string) {
	pos, ok := m.tracker.Position(symbol)
	if !ok {
		return
	}

	// Step 1: skip if closing.
	if pos.IsClosing {
		return
	}

	// Step 2: stop-loss check.
	if pos.StopLoss > 0 {
		if price, err := m.store.LastPrice(symbol); err == nil && price <= pos.StopLoss {
			m.handleStopLoss(pos)
			return
		}
	}

	// Step 3: orphan check.
	if pos.OpenOrderID == "" {
		if m.linkExistingSellOrder(symbol) {
			return
		}
		m.recreateExitOrder(pos)
		return
	}

	// Step 4: pending TP order health, throttled.
	m.pollPendingHealth(symbol, pos.OpenOrderID)
}

func (m *Manager) linkExistingSellOrder(symbol string) bool {
	for _, p := range m.tracker.PendingOrdersFor(symbol) {
		if p.Side == models.OrderSideSell {
			m.tracker.MutatePosition(symbol, func(pp models.Position) (models.Position, bool) {
				pp.OpenOrderID = p.OrderID
				return pp, true
			})
			return true
		}
	}
	return false
}

// handleStopLoss marks the position closing, cancels the live TP
// best-effort, verifies the position still exists at the broker, then
// market-sells the broker-reported quantity.
func (m *Manager) handleStopLoss(pos models.Position) {
	pos, claimed := m.tracker.MutatePosition(pos.Symbol, func(p models.Position) (models.Position, bool) {
		if p.IsClosing {
			return p, false
		}
		p.IsClosing = true
		return p, true
	})
	if !claimed {
		return
	}

	if pos.OpenOrderID != "" {
		if err := m.broker.CancelOrder(pos.OpenOrderID); err != nil {
			log.Debug().Str("order_id", pos.OpenOrderID).Err(err).Msg("cancel TP order on stop loss failed, ignoring")
		}
		m.tracker.RemovePendingOrder(pos.OpenOrderID)
	}

	holdings, err := m.broker.GetHoldings()
	if err != nil {
		log.Error().Str("symbol", pos.Symbol).Err(err).Msg("stop loss: failed to verify holding, will retry")
		m.clearClosing(pos.Symbol)
		return
	}
	qty, found := holdingQty(holdings, pos.Symbol)
	if !found {
		m.tracker.RemovePosition(pos.Symbol)
		return
	}

	_, err = m.broker.PlaceOrder(models.Order{
		Symbol:   pos.Symbol,
		Side:     models.OrderSideSell,
		Type:     models.OrderTypeMarket,
		Quantity: qty,
		Status:   models.OrderStatusPending,
	})
	if err != nil {
		log.Error().Str("symbol", pos.Symbol).Err(err).Msg("stop loss market sell failed, will retry")
		m.clearClosing(pos.Symbol)
		return
	}

	m.closePosition(pos.Symbol, pos.StopLoss, "stop_loss")
}

func (m *Manager) clearClosing(symbol string) {
	m.tracker.MutatePosition(symbol, func(p models.Position) (models.Position, bool) {
		p.IsClosing = false
		return p, true
	})
}

// recreateExitOrder is the self-healing core of exit-order maintenance. Attempt
// accounting is committed to the tracker before any broker call so a
// broker outage never causes an unbounded retry loop within one tick.
func (m *Manager) recreateExitOrder(pos models.Position) {
	if pos.RecreateAttempts >= m.cfg.MaxRecreateAttempts {
		log.Error().Str("symbol", pos.Symbol).Msg("exit order recreation retries exhausted, abandoning position")
		m.tracker.RemovePosition(pos.Symbol)
		return
	}
	if !pos.LastRecreateAttempt.IsZero() && time.Since(pos.LastRecreateAttempt) < m.cfg.RecreateBackoff {
		return
	}

	updated, ok := m.tracker.MutatePosition(pos.Symbol, func(p models.Position) (models.Position, bool) {
		p.LastRecreateAttempt = time.Now()
		p.RecreateAttempts++
		return p, true
	})
	if !ok {
		return
	}

	holdings, err := m.broker.GetHoldings()
	if err != nil {
		log.Error().Str("symbol", updated.Symbol).Err(err).Msg("exit order recreation: failed to fetch holdings")
		return
	}
	qty, found := holdingQty(holdings, updated.Symbol)
	if !found {
		m.tracker.RemovePosition(updated.Symbol)
		return
	}

	placed, err := m.broker.PlaceOrder(models.Order{
		Symbol:   updated.Symbol,
		Side:     models.OrderSideSell,
		Type:     models.OrderTypeLimit,
		Quantity: qty,
		Price:    updated.TakeProfit,
		Status:   models.OrderStatusPending,
	})
	if err != nil {
		log.Error().Str("symbol", updated.Symbol).Err(err).Msg("exit order recreation: broker rejected placement")
		return
	}

	m.tracker.MutatePosition(updated.Symbol, func(p models.Position) (models.Position, bool) {
		p.OpenOrderID = placed.ID
		return p, true
	})
	m.tracker.RegisterPendingOrder(models.PendingOrder{
		OrderID:       placed.ID,
		Symbol:        updated.Symbol,
		Side:          models.OrderSideSell,
		LimitPrice:    updated.TakeProfit,
		Qty:           qty,
		CreatedAt:     time.Now(),
		LastCheckTime: time.Now(),
	})
}

// pollPendingHealth polls a pending sell order's broker state,
// throttled to at most once per OrderCheckInterval.
func (m *Manager) pollPendingHealth(symbol, orderID string) {
	pending, ok := m.tracker.PendingOrder(orderID)
	if !ok {
		return
	}
	if time.Since(pending.LastCheckTime) < m.cfg.OrderCheckInterval {
		return
	}

	order, err := m.broker.GetOrder(orderID)
	if err != nil {
		log.Debug().Str("order_id", orderID).Err(err).Msg("pending order health poll failed")
		return
	}

	pending.LastCheckTime = time.Now()
	m.tracker.RegisterPendingOrder(pending)

	switch order.Status {
	case models.OrderStatusFilled:
		m.onFill(execution.ExecutionReport{
			OrderID:   orderID,
			Symbol:    symbol,
			Side:      models.OrderSideSell,
			Status:    models.OrderStatusFilled,
			FilledQty: order.FilledQuantity,
			FillPrice: order.AveragePrice,
		})
	case models.OrderStatusCancelled, models.OrderStatusRejected:
		m.onCancelOrReject(execution.ExecutionReport{
			OrderID: orderID,
			Symbol:  symbol,
			Side:    models.OrderSideSell,
			Status:  order.Status,
		})
	}
}

func holdingQty(holdings []models.Holding, symbol string) (float64, bool) {
	for _, h := range holdings {
		if h.Symbol == symbol && h.Qty > 0 {
			return h.Qty, true
		}
	}
	return 0, false
}
