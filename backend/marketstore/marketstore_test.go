package marketstore

import (
	"testing"
	"time"

	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/kestrel-trading/corehft/backend/tradeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushQuoteEvictsOldest(t *testing.T) {
	s := New(3)
	for i := 0; i < 5; i++ {
		s.PushQuote(models.Quote{Symbol: "BTCUSDT", Bid: float64(i), Ask: float64(i) + 1})
	}

	assert.Equal(t, 3, s.QuoteCount("BTCUSDT"))
	quotes := s.RecentQuotes("BTCUSDT", 10)
	require.Len(t, quotes, 3)
	assert.Equal(t, 2.0, quotes[0].Bid)
	assert.Equal(t, 4.0, quotes[2].Bid)
}

func TestRecentQuotesWithNLessThanStored(t *testing.T) {
	s := New(10)
	for i := 0; i < 5; i++ {
		s.PushQuote(models.Quote{Symbol: "ETHUSDT", Bid: float64(i)})
	}

	quotes := s.RecentQuotes("ETHUSDT", 2)
	require.Len(t, quotes, 2)
	assert.Equal(t, 3.0, quotes[0].Bid)
	assert.Equal(t, 4.0, quotes[1].Bid)
}

func TestRecentQuotesEmptyHistoryReturnsEmptySlice(t *testing.T) {
	s := New(10)
	quotes := s.RecentQuotes("NOPE", 5)
	assert.Empty(t, quotes)
}

func TestLastPricePrefersTradeOverQuote(t *testing.T) {
	s := New(10)
	s.PushQuote(models.Quote{Symbol: "BTCUSDT", Bid: 100, Ask: 102})
	s.PushTrade(models.MarketTrade{Symbol: "BTCUSDT", Price: 101.5})

	price, err := s.LastPrice("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 101.5, price)
}

func TestLastPriceFallsBackToQuoteMid(t *testing.T) {
	s := New(10)
	s.PushQuote(models.Quote{Symbol: "BTCUSDT", Bid: 100, Ask: 102})

	price, err := s.LastPrice("BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 101.0, price)
}

func TestLastPriceNoDataReturnsSentinel(t *testing.T) {
	s := New(10)
	_, err := s.LastPrice("NOPE")
	assert.ErrorIs(t, err, tradeerr.ErrNoMarketData)
}

func TestLastQuote(t *testing.T) {
	s := New(10)
	_, ok := s.LastQuote("BTCUSDT")
	assert.False(t, ok)

	q := models.Quote{Symbol: "BTCUSDT", Bid: 100, Ask: 102, Timestamp: time.Now()}
	s.PushQuote(q)

	last, ok := s.LastQuote("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, q.Bid, last.Bid)
}

func TestNewFallsBackToDefaultHistoryLimit(t *testing.T) {
	s := New(0)
	for i := 0; i < defaultHistoryLimit+5; i++ {
		s.PushQuote(models.Quote{Symbol: "BTCUSDT", Bid: float64(i)})
	}
	assert.Equal(t, defaultHistoryLimit, s.QuoteCount("BTCUSDT"))
}
