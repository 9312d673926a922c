// Package equities polls piquette/finance-go for equity quotes on an
// interval and publishes them onto the event fabric, the counterpart to
// the binance package's push-based crypto stream for symbols that have
// no websocket feed available.
package equities

import (
	"context"
	"time"

	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/models"
)

const defaultPollInterval = 2 * time.Second

// Poller periodically fetches quotes for a fixed set of equity symbols
// and publishes them onto the bus.
type Poller struct {
	bus      *eventbus.Bus
	symbols  []string
	interval time.Duration
}

// NewPoller creates a Poller for symbols at the given interval. A
// non-positive interval falls back to 2s.
func NewPoller(bus *eventbus.Bus, symbols []string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{bus: bus, symbols: symbols, interval: interval}
}

// Run polls every configured symbol once per interval until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollAll()
		}
	}
}

func (p *Poller) pollAll() {
	for _, symbol := range p.symbols {
		q, err := quote.Get(symbol)
		if err != nil {
			log.Debug().Str("symbol", symbol).Err(err).Msg("equity quote poll failed")
			continue
		}
		if q.Bid <= 0 || q.Ask <= 0 {
			continue
		}

		p.bus.Publish(eventbus.KindMarketQuote, models.Quote{
			Symbol:    symbol,
			Bid:       q.Bid,
			Ask:       q.Ask,
			Timestamp: time.Now(),
		})
	}
}
