package execution

import "github.com/kestrel-trading/corehft/backend/models"

// Pricer computes an aggressive limit price from the current quote: a
// price likely to fill quickly without crossing all the way to a market
// order.
type Pricer struct {
	// AggressionBps is how far past the mid, in basis points, the limit
	// price reaches toward the far side of the book.
	AggressionBps float64
}

// NewPricer creates a Pricer with the given aggression.
func NewPricer(aggressionBps float64) *Pricer {
	return &Pricer{AggressionBps: aggressionBps}
}

// AggressiveLimitPrice computes the limit price for side given the
// current quote: a buy reaches up from mid but never past the ask; a
// sell reaches down from mid but never past the bid.
func (p *Pricer) AggressiveLimitPrice(q models.Quote, side models.OrderSide) float64 {
	mid := q.Mid()
	factor := p.AggressionBps / 10000

	if side == models.OrderSideBuy {
		price := mid * (1 + factor)
		if price > q.Ask {
			price = q.Ask
		}
		return price
	}

	price := mid * (1 - factor)
	if price < q.Bid {
		price = q.Bid
	}
	return price
}
