package cashout

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
	"github.com/radieske/live-cashout-engine/internal/engine/odds"
)

// Strategy seleciona a fórmula de valuation. As duas estratégias herdam
// constantes próprias e nunca compartilham tuning.
type Strategy string

const (
	// StrategyAggregate (default): produto das probabilidades por perna
	// aplicado sobre o lucro potencial.
	StrategyAggregate Strategy = "aggregate"
	// StrategyShift (alternativa): razão de probabilidade implícita
	// placement vs. agora + decaimento temporal. Só para simples ao vivo.
	StrategyShift Strategy = "shift"
)

// ErrShiftRequiresSingleLeg: a estratégia shift só fala de uma perna.
var ErrShiftRequiresSingleLeg = errors.New("shift strategy requires a single-leg bet")

// Factors decompõe a cotação para auditoria e exibição. Obrigatório:
// disputa/suporte precisa reconstruir exatamente como o valor saiu.
type Factors struct {
	AggregateProbability float64 `json:"aggregateProbability,omitempty"`
	ProbabilityShift     float64 `json:"probabilityShift,omitempty"`
	TimeDecay            float64 `json:"timeDecay,omitempty"`
	Margin               float64 `json:"margin"`
}

// Quote é a valuation transiente de uma aposta, com janela curta de
// validade; o cliente reconfirma dentro da tolerância antes de executar.
type Quote struct {
	BetID            string    `json:"betId"`
	ValueCents       int64     `json:"value_cents"`
	ProfitLossCents  int64     `json:"profit_loss_cents"`
	ProfitPercentage float64   `json:"profit_percentage"`
	ComputedAt       time.Time `json:"computedAt"`
	Strategy         Strategy  `json:"strategy"`
	Factors          Factors   `json:"factors"`
}

// margens por tier de fidelidade: status maior, haircut menor
var margins = map[bets.Tier]float64{
	bets.TierBronze:   0.90,
	bets.TierSilver:   0.92,
	bets.TierGold:     0.94,
	bets.TierPlatinum: 0.95,
}

// MarginFor devolve o margin factor do tier (default bronze).
func MarginFor(t bets.Tier) float64 {
	if m, ok := margins[t]; ok {
		return m
	}
	return margins[bets.TierBronze]
}

// Valuator calcula o valor corrente de buy-back de uma aposta PENDING.
type Valuator struct {
	Log           *zap.Logger
	Feed          matchstate.Feed
	Base          odds.BaseSource
	Elig          *Eligibility
	FloorFraction float64          // fração mínima do stake
	Now           func() time.Time // injetável nos testes
}

// Quote computa a cotação de cash-out. Sempre parte de snapshots frescos:
// nada aqui passa pelo cache de odds.
func (v *Valuator) Quote(ctx context.Context, bet *bets.Bet, strat Strategy) (*Quote, error) {
	if strat == "" {
		strat = StrategyAggregate
	}

	snaps, err := v.fetchSnapshots(ctx, bet)
	if err != nil {
		return nil, err
	}

	if err := v.Elig.Check(bet, snaps); err != nil {
		return nil, err
	}

	margin := MarginFor(bet.UserTier)

	var value int64
	var factors Factors
	switch strat {
	case StrategyShift:
		value, factors, err = v.shiftValue(ctx, bet, snaps, margin)
	default:
		value, factors, err = v.aggregateValue(ctx, bet, snaps, margin)
	}
	if err != nil {
		return nil, err
	}

	// piso: nunca menos que a fração configurada do stake
	floor := int64(math.Round(v.FloorFraction * float64(bet.StakeCents)))
	if value < floor {
		value = floor
	}
	if value > bet.PotentialWin {
		value = bet.PotentialWin
	}
	if value < 1 {
		return nil, fault.Ineligible(fault.ReasonBelowFloor)
	}

	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	v.Log.Debug("cash-out quoted",
		zap.String("bet_id", bet.ID),
		zap.String("strategy", string(strat)),
		zap.Int64("value_cents", value),
		zap.Float64("aggregate_probability", factors.AggregateProbability),
		zap.Float64("probability_shift", factors.ProbabilityShift),
		zap.Float64("time_decay", factors.TimeDecay),
		zap.Float64("margin", factors.Margin),
	)

	pl := value - bet.StakeCents
	return &Quote{
		BetID:            bet.ID,
		ValueCents:       value,
		ProfitLossCents:  pl,
		ProfitPercentage: math.Round(float64(pl)/float64(bet.StakeCents)*10000) / 100,
		ComputedAt:       now(),
		Strategy:         strat,
		Factors:          factors,
	}, nil
}

// aggregateValue: produto das probabilidades independentes por perna.
//
//	raw   = stake + (potentialWin − stake) × aggProb
//	value = round(raw × margin)
func (v *Valuator) aggregateValue(ctx context.Context, bet *bets.Bet, snaps map[string]*matchstate.Snapshot, margin float64) (int64, Factors, error) {
	agg := 1.0
	allWon := true

	for _, leg := range bet.Selections {
		p, won, err := v.legProbability(ctx, leg, snaps[leg.MatchID])
		if err != nil {
			return 0, Factors{}, err
		}
		if !won {
			allWon = false
		}
		agg *= p
	}

	if allWon {
		// tudo ganho liquida como vitória cheia, não como buy-back
		return 0, Factors{}, fault.Ineligible(fault.ReasonAllLegsWon)
	}

	raw := float64(bet.StakeCents) + float64(bet.PotentialWin-bet.StakeCents)*agg
	value := int64(math.Round(raw * margin))

	return value, Factors{AggregateProbability: agg, Margin: margin}, nil
}

// legProbability estima a probabilidade de uma perna ainda viva.
// Perna perdida derruba o cash-out inteiro (semântica de acumulador).
func (v *Valuator) legProbability(ctx context.Context, leg bets.Selection, snap *matchstate.Snapshot) (p float64, won bool, err error) {
	if leg.Result == bets.LegLost {
		return 0, false, fault.Ineligible(fault.ReasonLegLost)
	}
	if leg.Result == bets.LegWon {
		return 1, true, nil
	}

	if w, lost, decided := odds.Decided(leg.Market, leg.Selection, snap); decided {
		if lost {
			return 0, false, fault.Ineligible(fault.ReasonLegLost)
		}
		_ = w
		return 1, true, nil
	}

	switch snap.Status {
	case matchstate.Scheduled:
		// pré-jogo: nenhuma informação nova, vale a probabilidade do placement
		return leg.OddsAtPlacement.Implied(), false, nil
	default:
		price, err := v.currentPrice(ctx, leg, snap)
		if err != nil {
			return 0, false, err
		}
		return price.Implied(), false, nil
	}
}

// shiftValue: razão entre probabilidade implícita atual e do placement,
// clampada em [0.1, 2.0], com decaimento linear no tempo e haircuts de
// mercado. Constantes independentes da estratégia default.
func (v *Valuator) shiftValue(ctx context.Context, bet *bets.Bet, snaps map[string]*matchstate.Snapshot, margin float64) (int64, Factors, error) {
	if len(bet.Selections) != 1 {
		return 0, Factors{}, ErrShiftRequiresSingleLeg
	}
	leg := bet.Selections[0]
	snap := snaps[leg.MatchID]

	if leg.Result == bets.LegLost {
		return 0, Factors{}, fault.Ineligible(fault.ReasonLegLost)
	}
	if leg.Result == bets.LegWon {
		return 0, Factors{}, fault.Ineligible(fault.ReasonAllLegsWon)
	}
	if _, lost, decided := odds.Decided(leg.Market, leg.Selection, snap); decided {
		if lost {
			return 0, Factors{}, fault.Ineligible(fault.ReasonLegLost)
		}
		return 0, Factors{}, fault.Ineligible(fault.ReasonAllLegsWon)
	}

	price, err := v.currentPrice(ctx, leg, snap)
	if err != nil {
		return 0, Factors{}, err
	}

	shift := price.Implied() / leg.OddsAtPlacement.Implied()
	if shift < 0.1 {
		shift = 0.1
	}
	if shift > 2.0 {
		shift = 2.0
	}

	elapsed := snap.Minute - bet.PlacedAtMinute
	if elapsed < 0 {
		elapsed = 0
	}
	decay := 1.0 - float64(elapsed)*0.005
	if decay < 0.7 {
		decay = 0.7
	}

	mult := 1.0
	if leg.Market == market.NextGoal {
		mult *= 0.95 // mercado mais volátil, haircut próprio
	}
	if snap.IsDerby {
		mult *= 0.97
	}

	value := int64(math.Round(float64(bet.StakeCents) * shift * decay * mult * margin))

	return value, Factors{ProbabilityShift: shift, TimeDecay: decay, Margin: margin}, nil
}

// currentPrice recomputa a odd fresca da seleção exata da perna.
func (v *Valuator) currentPrice(ctx context.Context, leg bets.Selection, snap *matchstate.Snapshot) (market.Price, error) {
	var base odds.BaseOdds
	if leg.Market == market.MatchResult {
		var err error
		base, err = v.Base.BaseOdds(ctx, leg.MatchID)
		if err != nil {
			return 0, err
		}
	}
	return odds.PriceFor(leg.Market, leg.Selection, snap, base), nil
}

func (v *Valuator) fetchSnapshots(ctx context.Context, bet *bets.Bet) (map[string]*matchstate.Snapshot, error) {
	snaps := make(map[string]*matchstate.Snapshot, len(bet.Selections))
	for _, leg := range bet.Selections {
		if _, ok := snaps[leg.MatchID]; ok {
			continue
		}
		s, err := v.Feed.Get(ctx, leg.MatchID)
		if err != nil {
			if errors.Is(err, matchstate.ErrMatchNotFound) {
				return nil, fault.NotFound("match " + leg.MatchID)
			}
			return nil, err
		}
		snaps[leg.MatchID] = s
	}
	return snaps, nil
}
