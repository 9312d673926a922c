package strategy

import (
	"testing"
	"time"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/marketstore"
	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	open bool
}

func (f *fakeChecker) HasOpenOrPending(string) bool { return f.open }

func testConfig() Config {
	return Config{
		Default: SymbolConfig{
			WarmupMinCount:      5,
			EvaluateEveryQuotes: 1,
			Lookback:            5,
			MinEdgeBps:          5,
			MaxSpreadBps:        50,
			TakeProfitBps:       100,
			StopLossBps:         50,
			Staleness:           time.Minute,
			CooldownQuotes:      3,
		},
	}
}

func feedRisingQuotes(store *marketstore.Store, symbol string, n int, startMid float64, step float64) models.Quote {
	now := time.Now()
	var last models.Quote
	for i := 0; i < n; i++ {
		mid := startMid + step*float64(i)
		q := models.Quote{
			Symbol:    symbol,
			Bid:       mid - 0.01,
			Ask:       mid + 0.01,
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		}
		store.PushQuote(q)
		last = q
	}
	return last
}

func TestHFTEvaluatorWarmupSkipsSignal(t *testing.T) {
	store := marketstore.New(10)
	bus := eventbus.New()
	sub := bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	eval := NewHFTEvaluator(store, bus, testConfig(), &fakeChecker{})

	q := feedRisingQuotes(store, "BTCUSDT", 3, 100, 1)
	eval.OnQuote(q)

	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected signal before warmup: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHFTEvaluatorEmitsOnMomentumEdge(t *testing.T) {
	store := marketstore.New(10)
	bus := eventbus.New()
	sub := bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	eval := NewHFTEvaluator(store, bus, testConfig(), &fakeChecker{})

	q := feedRisingQuotes(store, "BTCUSDT", 10, 100, 0.5)
	eval.OnQuote(q)

	select {
	case evt := <-sub.Events():
		sig, ok := evt.Payload.(Signal)
		require.True(t, ok)
		assert.Equal(t, "BTCUSDT", sig.Symbol)
		assert.Equal(t, ActionBuy, sig.Action)
	case <-time.After(time.Second):
		t.Fatal("expected a buy signal")
	}
}

func TestHFTEvaluatorSkipsWideSpread(t *testing.T) {
	store := marketstore.New(10)
	bus := eventbus.New()
	sub := bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	cfg := testConfig()
	cfg.Default.MaxSpreadBps = 1 // force rejection: test quotes have a wider spread
	eval := NewHFTEvaluator(store, bus, cfg, &fakeChecker{})

	q := feedRisingQuotes(store, "BTCUSDT", 10, 100, 0.5)
	eval.OnQuote(q)

	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected signal despite wide spread: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHFTEvaluatorSkipsWhenPositionOpen(t *testing.T) {
	store := marketstore.New(10)
	bus := eventbus.New()
	sub := bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	eval := NewHFTEvaluator(store, bus, testConfig(), &fakeChecker{open: true})

	q := feedRisingQuotes(store, "BTCUSDT", 10, 100, 0.5)
	eval.OnQuote(q)

	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected signal while position open: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHFTEvaluatorAppliesCooldownAfterSignal(t *testing.T) {
	store := marketstore.New(10)
	bus := eventbus.New()
	sub := bus.Subscribe(eventbus.KindSignal)
	defer sub.Close()

	eval := NewHFTEvaluator(store, bus, testConfig(), &fakeChecker{})

	q := feedRisingQuotes(store, "BTCUSDT", 10, 100, 0.5)
	eval.OnQuote(q)

	select {
	case <-sub.Events():
	case <-time.After(time.Second):
		t.Fatal("expected first signal")
	}

	// Next quote should be suppressed by the cooldown just set.
	next := models.Quote{Symbol: "BTCUSDT", Bid: 110, Ask: 110.02, Timestamp: time.Now()}
	store.PushQuote(next)
	eval.OnQuote(next)

	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected signal during cooldown: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
