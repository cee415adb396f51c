package cashout

import (
	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
)

// Eligibility é o guard sem estado avaliado antes de cotar e antes de
// executar um cash-out. Cada verificação que falha devolve um reason
// code específico, nunca uma falha genérica.
type Eligibility struct {
	MinMinute      int // janela de cash-out: início (inclusivo)
	MaxMinute      int // janela de cash-out: fim (exclusivo)
	MinMinutesHeld int // minutos mínimos desde o placement
}

// Check valida aposta + snapshots das partidas das pernas.
func (e *Eligibility) Check(bet *bets.Bet, snaps map[string]*matchstate.Snapshot) error {
	if bet.Status != bets.Pending || bet.CashedOut {
		return fault.Ineligible(fault.ReasonAlreadySettled)
	}

	live := 0
	for _, leg := range bet.Selections {
		if s, ok := snaps[leg.MatchID]; ok && s.Status == matchstate.Live {
			live++
		}
	}

	// cash-out exige perna em jogo; múltiplas longas podem liquidar
	// parcialmente mesmo com tudo pré-jogo/encerrado
	if live == 0 && !bet.LongAccumulator() {
		return fault.Ineligible(fault.ReasonMatchNotLive)
	}

	// janela temporal só se aplica à aposta simples ao vivo
	if !bet.Accumulator() && live == 1 {
		snap := snaps[bet.Selections[0].MatchID]
		if snap.Minute < e.MinMinute || snap.Minute >= e.MaxMinute {
			return fault.Ineligible(fault.ReasonOutsideWindow)
		}
		if snap.Minute-bet.PlacedAtMinute < e.MinMinutesHeld {
			return fault.Ineligible(fault.ReasonTooSoon)
		}
	}

	return nil
}
