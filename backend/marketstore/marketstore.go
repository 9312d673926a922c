// Package marketstore is the bounded per-symbol price history every
// strategy, sizing, and pricing decision reads. It holds typed
// quotes/trades directly. A single sync.RWMutex guards the histories
// of all symbols; state is not sharded per symbol, so a writer for one
// symbol blocks readers and writers of every other symbol.
package marketstore

import (
	"sync"

	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/kestrel-trading/corehft/backend/tradeerr"
)

const defaultHistoryLimit = 50

// Store is a per-symbol bounded FIFO of recent quotes and trades.
type Store struct {
	historyLimit int

	mu     sync.RWMutex
	quotes map[string][]models.Quote
	trades map[string][]models.MarketTrade
}

// New creates a Store with the given per-symbol history depth. A
// non-positive limit falls back to the default of 50.
func New(historyLimit int) *Store {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Store{
		historyLimit: historyLimit,
		quotes:       make(map[string][]models.Quote),
		trades:       make(map[string][]models.MarketTrade),
	}
}

// PushQuote appends a quote for symbol, evicting the oldest once the
// per-symbol ring is full.
func (s *Store) PushQuote(q models.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.Symbol] = appendBounded(s.quotes[q.Symbol], q, s.historyLimit)
}

// PushTrade appends a trade print for symbol, evicting the oldest once
// the per-symbol ring is full.
func (s *Store) PushTrade(t models.MarketTrade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades[t.Symbol] = appendBounded(s.trades[t.Symbol], t, s.historyLimit)
}

func appendBounded[T any](ring []T, item T, limit int) []T {
	ring = append(ring, item)
	if len(ring) > limit {
		ring = ring[len(ring)-limit:]
	}
	return ring
}

// RecentQuotes returns up to the last n quotes for symbol, oldest
// first. An empty slice (not an error) is returned if no data has
// arrived yet.
func (s *Store) RecentQuotes(symbol string, n int) []models.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ring := s.quotes[symbol]
	if n <= 0 || n >= len(ring) {
		out := make([]models.Quote, len(ring))
		copy(out, ring)
		return out
	}
	out := make([]models.Quote, n)
	copy(out, ring[len(ring)-n:])
	return out
}

// QuoteCount returns how many quotes are currently stored for symbol.
func (s *Store) QuoteCount(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quotes[symbol])
}

// LastPrice returns the best-known current price for symbol: the last
// trade price if any trade has been seen, otherwise the mid of the last
// quote. Returns tradeerr.ErrNoMarketData if neither is available.
func (s *Store) LastPrice(symbol string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if trades := s.trades[symbol]; len(trades) > 0 {
		return trades[len(trades)-1].Price, nil
	}
	if quotes := s.quotes[symbol]; len(quotes) > 0 {
		return quotes[len(quotes)-1].Mid(), nil
	}
	return 0, tradeerr.ErrNoMarketData
}

// LastQuote returns the most recent quote for symbol, if any.
func (s *Store) LastQuote(symbol string) (models.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ring := s.quotes[symbol]
	if len(ring) == 0 {
		return models.Quote{}, false
	}
	return ring[len(ring)-1], true
}
