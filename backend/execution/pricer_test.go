package execution

import (
	"testing"

	"github.com/kestrel-trading/corehft/backend/models"
	"github.com/stretchr/testify/assert"
)

func TestAggressiveLimitPriceBuyCappedAtAsk(t *testing.T) {
	p := NewPricer(5)
	q := models.Quote{Bid: 99.99, Ask: 100.01}

	price := p.AggressiveLimitPrice(q, models.OrderSideBuy)
	assert.LessOrEqual(t, price, q.Ask)
}

func TestAggressiveLimitPriceBuyAboveMid(t *testing.T) {
	p := NewPricer(5)
	q := models.Quote{Bid: 100, Ask: 110}

	price := p.AggressiveLimitPrice(q, models.OrderSideBuy)
	assert.Greater(t, price, q.Mid())
	assert.LessOrEqual(t, price, q.Ask)
}

func TestAggressiveLimitPriceSellFlooredAtBid(t *testing.T) {
	p := NewPricer(5)
	q := models.Quote{Bid: 99.99, Ask: 100.01}

	price := p.AggressiveLimitPrice(q, models.OrderSideSell)
	assert.GreaterOrEqual(t, price, q.Bid)
}

func TestAggressiveLimitPriceSellBelowMid(t *testing.T) {
	p := NewPricer(5)
	q := models.Quote{Bid: 90, Ask: 100}

	price := p.AggressiveLimitPrice(q, models.OrderSideSell)
	assert.Less(t, price, q.Mid())
	assert.GreaterOrEqual(t, price, q.Bid)
}
