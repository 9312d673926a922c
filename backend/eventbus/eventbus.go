// Package eventbus is the core's in-process broadcast fabric. It carries
// a tagged union of typed events from producers (market-data adapters,
// the strategy engine, the execution path) to any number of subscribers
// (the strategy engine, the execution path, the position lifecycle
// manager) through one mutex-guarded subscriber registry shared by
// every kind of event; Publish delivers on the caller's goroutine.
package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Kind identifies the type of payload carried by an Event.
type Kind string

const (
	KindMarketQuote     Kind = "market.quote"
	KindMarketTrade     Kind = "market.trade"
	KindSignal          Kind = "signal"
	KindOrderRequest    Kind = "order.request"
	KindExecutionReport Kind = "execution.report"
	KindClosedTrade     Kind = "position.closed"
)

// Event is the tagged union carried on the bus. Payload holds the
// concrete event struct (models.Quote, models.MarketTrade,
// strategy.Signal, execution.OrderRequest, execution.ExecutionReport).
type Event struct {
	Kind    Kind
	Payload interface{}
}

// subscriberBuffer is the default channel depth per subscriber. Publish
// is never allowed to block on a slow subscriber; once a subscriber's
// channel is full, further events for it are dropped and counted.
const subscriberBuffer = 256

// Bus is a multi-producer, multi-consumer non-blocking broadcast fabric.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]*subscription
	nextID      int
	dropped     atomic.Uint64
}

type subscription struct {
	kinds map[Kind]bool // nil means "all kinds"
	ch    chan Event
}

// New creates an empty event bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[int]*subscription),
	}
}

// Subscription is a handle returned by Subscribe. Events() yields the
// buffered channel of matching events; Close unregisters it.
type Subscription struct {
	id   int
	bus  *Bus
	ch   chan Event
}

// Events returns the channel to range over for delivered events.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subscribers[s.id]; ok {
		delete(s.bus.subscribers, s.id)
		close(s.ch)
	}
}

// Subscribe registers a new subscriber. If kinds is empty, the
// subscriber receives every event kind.
func (b *Bus) Subscribe(kinds ...Kind) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	var filter map[Kind]bool
	if len(kinds) > 0 {
		filter = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			filter[k] = true
		}
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subscribers[id] = &subscription{kinds: filter, ch: ch}

	return &Subscription{id: id, bus: b, ch: ch}
}

// Publish broadcasts an event to every matching subscriber. It never
// blocks: a subscriber whose buffer is full has the event dropped for it
// and the bus-wide drop counter incremented.
func (b *Bus) Publish(kind Kind, payload interface{}) {
	evt := Event{Kind: kind, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.kinds != nil && !sub.kinds[kind] {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			b.dropped.Add(1)
			log.Warn().Str("kind", string(kind)).Msg("event bus dropped event for slow subscriber")
		}
	}
}

// Dropped returns the running count of events dropped due to full
// subscriber buffers, for diagnostics.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
