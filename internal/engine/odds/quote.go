package odds

import (
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
)

// Quote é o preço corrente de uma seleção, artefato derivado e expirável.
// Nunca é persistido como fonte de verdade.
type Quote struct {
	Market        market.Market    `json:"market"`
	Selection     market.Selection `json:"selection"`
	Price         market.Price     `json:"price"`
	EnhancedPrice market.Price     `json:"enhancedPrice,omitempty"`
	DiamondReward int              `json:"diamondReward"`
}

// promo de vitrine: odds a partir de 3.00 ganham preço turbinado de exibição
const enhancedThreshold = market.Price(300)

func buildQuote(m market.Market, sel market.Selection, price market.Price) Quote {
	q := Quote{
		Market:        m,
		Selection:     sel,
		Price:         price,
		DiamondReward: int(price / 100),
	}
	if price >= enhancedThreshold {
		q.EnhancedPrice = price.Scale(1.05)
	}
	return q
}

// QuoteMarket precifica todas as seleções de um mercado a partir do snapshot.
func QuoteMarket(m market.Market, snap *matchstate.Snapshot, base BaseOdds) []Quote {
	sels := market.Selections(m)
	out := make([]Quote, 0, len(sels))
	for _, sel := range sels {
		out = append(out, buildQuote(m, sel, PriceFor(m, sel, snap, base)))
	}
	return out
}
