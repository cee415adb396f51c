package odds

import (
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
)

// Decided avalia se uma seleção já está resolvida pelo snapshot corrente.
// Usada tanto pelo modelo (colapso nos extremos da banda) quanto pelo
// valuator de cash-out (perna já ganha/perdida).
//
// Mercados de evento ("próximo X") são lidos do momento atual: partida
// encerrada não produz mais nenhum evento, então NO_GOAL venceu e os lados
// HOME/AWAY perderam.
func Decided(m market.Market, sel market.Selection, snap *matchstate.Snapshot) (won, lost, decided bool) {
	finished := snap.Status == matchstate.Finished

	switch m {
	case market.MatchResult:
		if !finished {
			return false, false, false
		}
		winner := market.Draw
		if snap.Lead() > 0 {
			winner = market.Home
		} else if snap.Lead() < 0 {
			winner = market.Away
		}
		return sel == winner, sel != winner, true

	case market.TotalGoals:
		if snap.TotalGoals() >= 3 {
			// linha já superada, mesmo com jogo em andamento
			return sel == market.Over25, sel == market.Under25, true
		}
		if finished {
			return sel == market.Under25, sel == market.Over25, true
		}
		return false, false, false

	case market.BTTS:
		if snap.HomeScore > 0 && snap.AwayScore > 0 {
			return sel == market.Yes, sel == market.No, true
		}
		if finished {
			return sel == market.No, sel == market.Yes, true
		}
		return false, false, false

	case market.NextGoal:
		if finished {
			return sel == market.NoGoal, sel != market.NoGoal, true
		}
		return false, false, false

	case market.NextCorner, market.NextCard:
		if finished {
			// sem seleção de "nenhum evento": tudo perde
			return false, true, true
		}
		return false, false, false

	case market.CorrectScore:
		if finished {
			return sel == market.CurrentScore, sel == market.OtherScore, true
		}
		return false, false, false
	}

	return false, false, false
}
