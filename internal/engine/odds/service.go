package odds

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
	"github.com/radieske/live-cashout-engine/internal/engine/oddscache"
)

// Quoter serve cotações ao vivo: cache TTL na frente do modelo puro.
// É o caminho de leitura sem efeitos colaterais do engine.
type Quoter struct {
	Log   *zap.Logger
	Feed  matchstate.Feed
	Base  BaseSource
	Cache *oddscache.Cache[[]Quote]

	OnServed func(source string) // métricas: "cache" | "model"
}

// QuoteMatch devolve as cotações de uma partida, opcionalmente filtradas
// por mercado. Hit de cache dentro do TTL devolve o conjunto memorizado
// verbatim; miss recomputa via modelo e grava com timestamp fresco.
func (q *Quoter) QuoteMatch(ctx context.Context, matchID string, filter *market.Market) ([]Quote, error) {
	key := oddscache.Key{MatchID: matchID}
	if filter != nil {
		key.Filter = string(*filter)
	}

	if cached, ok := q.Cache.Get(key); ok {
		if q.OnServed != nil {
			q.OnServed("cache")
		}
		return cached, nil
	}

	snap, err := q.Feed.Get(ctx, matchID)
	if err != nil {
		if errors.Is(err, matchstate.ErrMatchNotFound) {
			return nil, fault.NotFound("match " + matchID)
		}
		return nil, err
	}

	markets := market.All()
	if filter != nil {
		markets = []market.Market{*filter}
	}

	var quotes []Quote
	for _, m := range markets {
		var base BaseOdds
		if m == market.MatchResult {
			// única semente externa do modelo; ausência é erro, nunca preço inventado
			base, err = q.Base.BaseOdds(ctx, matchID)
			if err != nil {
				return nil, err
			}
		}
		quotes = append(quotes, QuoteMarket(m, snap, base)...)
	}

	q.Cache.Set(key, quotes)
	if q.OnServed != nil {
		q.OnServed("model")
	}

	q.Log.Debug("quotes computed",
		zap.String("match_id", matchID),
		zap.Int("count", len(quotes)),
	)
	return quotes, nil
}
