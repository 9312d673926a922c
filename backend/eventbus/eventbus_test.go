package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(KindMarketQuote)
	defer sub.Close()

	bus.Publish(KindMarketQuote, "quote-payload")

	select {
	case evt := <-sub.Events():
		assert.Equal(t, KindMarketQuote, evt.Kind)
		assert.Equal(t, "quote-payload", evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribeFiltersKind(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(KindSignal)
	defer sub.Close()

	bus.Publish(KindMarketQuote, "ignored")
	bus.Publish(KindSignal, "wanted")

	select {
	case evt := <-sub.Events():
		assert.Equal(t, KindSignal, evt.Kind)
		assert.Equal(t, "wanted", evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected second event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllKinds(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	defer sub.Close()

	bus.Publish(KindMarketQuote, 1)
	bus.Publish(KindExecutionReport, 2)

	received := []Kind{}
	for i := 0; i < 2; i++ {
		select {
		case evt := <-sub.Events():
			received = append(received, evt.Kind)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
	assert.ElementsMatch(t, []Kind{KindMarketQuote, KindExecutionReport}, received)
}

func TestCloseUnregistersAndIsIdempotent(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(KindSignal)

	sub.Close()
	sub.Close() // must not panic

	bus.Publish(KindSignal, "after-close")

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel should be closed")
}

func TestPublishDropsWhenSubscriberBufferFull(t *testing.T) {
	bus := New()
	sub := bus.Subscribe(KindMarketQuote)
	defer sub.Close()

	for i := 0; i < subscriberBuffer+10; i++ {
		bus.Publish(KindMarketQuote, i)
	}

	require.Greater(t, bus.Dropped(), uint64(0))
}
