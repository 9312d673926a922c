// Package binance streams best-bid/ask quotes from Binance's per-symbol
// book-ticker websockets directly onto the core's event fabric, the
// push-based counterpart to the equities package's REST poller for
// symbols with no websocket feed.
package binance

import (
	"strconv"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog/log"

	"github.com/kestrel-trading/corehft/backend/eventbus"
	"github.com/kestrel-trading/corehft/backend/models"
)

// Stream subscribes to one or more symbols' book-ticker feeds and
// publishes every update as a models.Quote onto the bus.
type Stream struct {
	bus     *eventbus.Bus
	symbols []string

	stopChans []chan struct{}
}

// NewStream creates a Stream that will publish quotes for symbols onto
// bus once started.
func NewStream(bus *eventbus.Bus, symbols []string) *Stream {
	return &Stream{bus: bus, symbols: symbols}
}

// Start opens one book-ticker websocket per configured symbol.
func (s *Stream) Start() error {
	for _, symbol := range s.symbols {
		sym := symbol
		handler := func(event *gobinance.WsBookTickerEvent) {
			s.onTick(sym, event)
		}
		errHandler := func(err error) {
			log.Error().Str("symbol", sym).Err(err).Msg("binance book ticker stream error")
		}

		_, stopC, err := gobinance.WsBookTickerServe(sym, handler, errHandler)
		if err != nil {
			s.Stop()
			return err
		}
		s.stopChans = append(s.stopChans, stopC)
	}
	return nil
}

func (s *Stream) onTick(symbol string, event *gobinance.WsBookTickerEvent) {
	bid, err := strconv.ParseFloat(event.BestBidPrice, 64)
	if err != nil {
		return
	}
	ask, err := strconv.ParseFloat(event.BestAskPrice, 64)
	if err != nil {
		return
	}

	s.bus.Publish(eventbus.KindMarketQuote, models.Quote{
		Symbol:    symbol,
		Bid:       bid,
		Ask:       ask,
		Timestamp: time.Now(),
	})
}

// Stop closes every open websocket stream.
func (s *Stream) Stop() {
	for _, stopC := range s.stopChans {
		close(stopC)
	}
	s.stopChans = nil
}
