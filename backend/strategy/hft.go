// Package strategy evaluates incoming quotes into buy Signals. The HFT
// evaluator is a pure momentum-over-spread check with no external
// calls; the hybrid evaluator wraps it with an advisory gate. Both are
// driven one quote at a time by whatever subscribes them to the event
// fabric, never by polling.
package strategy

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
)

// PositionChecker reports whether a symbol already has an open position
// or a pending entry order, consulted as the final gate before a signal
// is emitted so the engine never doubles up on a symbol.
type PositionChecker interface {
	HasOpenOrPending(symbol string) bool
}

type symbolState struct {
	quotesSinceEval int
	cooldown        int
}

// HFTEvaluator implements the core per-quote momentum strategy: skip
// until warmed up, debounce to every Nth quote, require a tight spread,
// require a minimum momentum edge over a lookback window, and skip
// symbols that already have a position or a pending entry.
type HFTEvaluator struct {
	name    string
	store   *marketstore.Store
	bus     *eventbus.Bus
	cfg     Config
	checker PositionChecker

	mu    sync.Mutex
	state map[string]*symbolState
}

// NewHFTEvaluator wires an evaluator reading from store, publishing
// Signals onto bus, tuned by cfg, consulting checker before emitting.
func NewHFTEvaluator(store *marketstore.Store, bus *eventbus.Bus, cfg Config, checker PositionChecker) *HFTEvaluator {
	return &HFTEvaluator{
		name:    "hft",
		store:   store,
		bus:     bus,
		cfg:     cfg,
		checker: checker,
		state:   make(map[string]*symbolState),
	}
}

func (e *HFTEvaluator) symbolState(symbol string) *symbolState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.state[symbol]
	if !ok {
		st = &symbolState{}
		e.state[symbol] = st
	}
	return st
}

// OnQuote runs the evaluation algorithm for a single incoming quote. It
// assumes the quote has already been pushed into store by the caller
// (engine.Core's quote loop); this call only reads.
func (e *HFTEvaluator) OnQuote(q models.Quote) {
	sc, st, ok := e.checkMomentum(q)
	if !ok {
		return
	}
	e.emit(q, sc, st)
}

// checkMomentum runs steps 1-5 of the per-quote algorithm, shared by
// both the plain HFT evaluator and the hybrid evaluator's gated
// variant. The returned bool reports whether the quote clears every
// check and is a momentum-edge candidate.
func (e *HFTEvaluator) checkMomentum(q models.Quote) (SymbolConfig, *symbolState, bool) {
	sc := e.cfg.For(q.Symbol)
	st := e.symbolState(q.Symbol)

	// Step 1: warmup.
	if e.store.QuoteCount(q.Symbol) < sc.WarmupMinCount {
		return sc, st, false
	}

	// Step 2: debounce to every Nth quote.
	e.mu.Lock()
	st.quotesSinceEval++
	due := sc.EvaluateEveryQuotes <= 1 || st.quotesSinceEval >= sc.EvaluateEveryQuotes
	if due {
		st.quotesSinceEval = 0
	}
	e.mu.Unlock()
	if !due {
		return sc, st, false
	}

	// Step 3: cooldown after a recent signal.
	e.mu.Lock()
	if st.cooldown > 0 {
		st.cooldown--
		e.mu.Unlock()
		return sc, st, false
	}
	e.mu.Unlock()

	if q.Mid() <= 0 {
		return sc, st, false
	}

	// Step 4: spread gate.
	if spread := q.SpreadBps(); spread > sc.MaxSpreadBps {
		log.Debug().Str("symbol", q.Symbol).Float64("spread_bps", spread).Float64("max_spread_bps", sc.MaxSpreadBps).Msg("strategy skipped quote: spread too wide")
		return sc, st, false
	}

	// Step 5: momentum edge over the lookback window.
	lookback := e.store.RecentQuotes(q.Symbol, sc.Lookback)
	if len(lookback) < sc.Lookback {
		return sc, st, false
	}
	baseline := lookback[0]
	if sc.Staleness > 0 && q.Timestamp.Sub(baseline.Timestamp) > sc.Staleness {
		return sc, st, false
	}
	if baseline.Mid() <= 0 {
		return sc, st, false
	}
	edge := 10000 * (q.Mid() - baseline.Mid()) / baseline.Mid()
	if edge < sc.MinEdgeBps {
		return sc, st, false
	}

	return sc, st, true
}

func (e *HFTEvaluator) emit(q models.Quote, sc SymbolConfig, st *symbolState) {
	// Step 7: at-most-one-position-or-pending-order gate.
	if e.checker != nil && e.checker.HasOpenOrPending(q.Symbol) {
		return
	}

	e.mu.Lock()
	st.cooldown = sc.CooldownQuotes
	e.mu.Unlock()

	signal := Signal{
		Symbol:        q.Symbol,
		Action:        ActionBuy,
		TakeProfitBps: sc.TakeProfitBps,
		StopLossBps:   sc.StopLossBps,
		StrategyName:  e.name,
		Price:         q.Mid(),
	}

	log.Debug().Str("symbol", q.Symbol).Float64("price", signal.Price).Msg("strategy emitted buy signal")
	e.bus.Publish(eventbus.KindSignal, signal)
}
