package strategy

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/kestrel-trading/corehft/backend/strategy/llmgate"
)

// gateRefreshTimeout bounds how long a single deferred advisory call is
// allowed to run before its answer is discarded.
const gateRefreshTimeout = 3 * time.Second

type gateState struct {
	open               bool
	quotesSinceRefresh int
	inFlight           bool
}

// HybridEvaluator runs the same momentum algorithm as HFTEvaluator,
// gated by a cached advisory opinion (step 6 of the algorithm) that is
// refreshed in the background every GateRefreshQuotes eligible quotes
// rather than on the hot path, so a slow or unreachable advisor never
// stalls quote processing.
type HybridEvaluator struct {
	*HFTEvaluator
	gate *llmgate.Gate

	gmu    sync.Mutex
	gstate map[string]*gateState
}

// NewHybridEvaluator wraps the same construction as NewHFTEvaluator,
// additionally consulting gate in the background before emitting a
// signal.
func NewHybridEvaluator(store *marketstore.Store, bus *eventbus.Bus, cfg Config, checker PositionChecker, gate *llmgate.Gate) *HybridEvaluator {
	inner := NewHFTEvaluator(store, bus, cfg, checker)
	inner.name = "hybrid"
	return &HybridEvaluator{
		HFTEvaluator: inner,
		gate:         gate,
		gstate:       make(map[string]*gateState),
	}
}

func (e *HybridEvaluator) gateStateFor(symbol string) *gateState {
	e.gmu.Lock()
	defer e.gmu.Unlock()
	gs, ok := e.gstate[symbol]
	if !ok {
		gs = &gateState{}
		e.gstate[symbol] = gs
	}
	return gs
}

// OnQuote runs steps 1-5 via the embedded evaluator, then applies the
// cached gate_open flag (step 6) before falling through to the shared
// position check and emission (steps 7-8).
func (e *HybridEvaluator) OnQuote(q models.Quote) {
	sc, st, ok := e.checkMomentum(q)
	if !ok {
		return
	}

	gs := e.gateStateFor(q.Symbol)

	e.gmu.Lock()
	gs.quotesSinceRefresh++
	due := gs.quotesSinceRefresh >= sc.GateRefreshQuotes && !gs.inFlight
	if due {
		gs.quotesSinceRefresh = 0
		gs.inFlight = true
	}
	open := gs.open
	e.gmu.Unlock()

	if due {
		e.refreshGate(q.Symbol, sc, gs)
	}

	if !open {
		return
	}

	e.emit(q, sc, st)
}

// refreshGate queries the advisory gate in the background. A denial or
// any error closes the gate and applies the no-trade cooldown so the
// symbol backs off instead of re-querying every eligible quote.
func (e *HybridEvaluator) refreshGate(symbol string, sc SymbolConfig, gs *gateState) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), gateRefreshTimeout)
		defer cancel()

		open, err := e.gate.Ask(ctx, symbol)
		if err != nil {
			log.Debug().Err(err).Str("symbol", symbol).Msg("hybrid gate unreachable, treating as closed")
			open = false
		}

		e.gmu.Lock()
		gs.open = open
		gs.inFlight = false
		e.gmu.Unlock()

		if !open {
			st := e.symbolState(symbol)
			e.mu.Lock()
			st.cooldown = sc.NoTradeCooldownQuotes
			e.mu.Unlock()
		}
	}()
}
