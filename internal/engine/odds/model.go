package odds

import (
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
)

// Modelo de precificação ao vivo. Funções puras: snapshot (+ base odds no
// caso de MATCH_RESULT) entram, um preço em ponto fixo sai, sempre dentro
// da banda do mercado.
//
// Três fatores regem todos os mercados:
//   - tempo: progress = minuto/90; quanto menos tempo resta, mais o preço
//     converge para o desfecho óbvio
//   - pressão de placar: vantagem de 2+ gols pune o azarão além do linear
//   - derby: mercados de evento (próximo gol, BTTS, escanteio, cartão)
//     encurtam para "o evento acontece"

// progress devolve a fração decorrida do jogo em [0,1].
func progress(snap *matchstate.Snapshot) float64 {
	min := snap.Minute
	if min > 90 {
		min = 90
	}
	if min < 0 {
		min = 0
	}
	if snap.Status == matchstate.Scheduled {
		return 0
	}
	return float64(min) / 90.0
}

// PriceFor calcula o preço corrente de uma seleção. Para MATCH_RESULT o
// chamador fornece as odds base; os demais mercados ignoram o parâmetro.
func PriceFor(m market.Market, sel market.Selection, snap *matchstate.Snapshot, base BaseOdds) market.Price {
	band := market.BandOf(m)

	// Resultado já decidido colapsa no extremo da banda antes de qualquer fator.
	if won, lost, decided := Decided(m, sel, snap); decided {
		if won {
			return band.Min
		}
		if lost {
			return band.Max
		}
	}

	p := progress(snap)

	var price market.Price
	switch m {
	case market.MatchResult:
		price = matchResultPrice(sel, snap, base, p)
	case market.NextGoal:
		price = nextGoalPrice(sel, snap, p)
	case market.TotalGoals:
		price = totalGoalsPrice(sel, snap, p)
	case market.BTTS:
		price = bttsPrice(sel, snap, p)
	case market.NextCorner:
		price = nextCornerPrice(sel, snap, p)
	case market.NextCard:
		price = nextCardPrice(sel, snap, p)
	case market.CorrectScore:
		price = correctScorePrice(sel, p)
	default:
		return 0
	}

	return band.Clamp(price)
}

func matchResultPrice(sel market.Selection, snap *matchstate.Snapshot, base BaseOdds, p float64) market.Price {
	d := snap.Lead() // perspectiva do mandante

	switch sel {
	case market.Home:
		return base.Home.Scale(sideFactor(d, p))
	case market.Away:
		return base.Away.Scale(sideFactor(-d, p))
	case market.Draw:
		return base.Draw.Scale(drawFactor(d, p))
	}
	return 0
}

// sideFactor é o fator do time visto da própria perspectiva:
// d > 0 o time lidera, d < 0 está atrás.
func sideFactor(d int, p float64) float64 {
	switch {
	case d > 0:
		// líder encurta com o tempo e com o tamanho da vantagem; a partir
		// do terceiro gol cada gol extra encurta com incremento decrescente,
		// então o preço sempre cai até a banda absorver
		shorten := 0.35
		step := 0.15
		for i := 1; i <= d; i++ {
			shorten += step
			if i >= 3 {
				step /= 2
			}
		}
		return 1.0 - p*shorten
	case d < 0:
		behind := float64(-d)
		f := 1.0 + p*0.8*behind
		if -d >= 2 {
			// virada de 2+ gols: punição adicional, não apenas linear
			f *= 1.0 + 0.5*(behind-1)
		}
		return f
	default:
		return 1.0
	}
}

func drawFactor(d int, p float64) float64 {
	abs := d
	if abs < 0 {
		abs = -abs
	}
	switch abs {
	case 0:
		// placar empatado deriva para o empate conforme o relógio corre
		return 1.0 - 0.35*p
	case 1:
		// um gol de distância: quase inalterado, leve redução tardia
		return 1.0 - 0.10*p
	default:
		return 1.0 + 0.70*p*float64(abs)
	}
}

func nextGoalPrice(sel market.Selection, snap *matchstate.Snapshot, p float64) market.Price {
	if sel == market.NoGoal {
		price := market.Price(400).Scale(1.0 - 0.85*p)
		if snap.IsDerby {
			price = price.Scale(1.15)
		}
		return price
	}

	price := market.Price(240)

	// time atrás pressiona mais; líder administra
	d := snap.Lead()
	if sel == market.Away {
		d = -d
	}
	if d > 0 {
		price = price.Scale(1.06)
	} else if d < 0 {
		price = price.Scale(0.94)
	}

	price = price.Scale(1.0 + 1.2*p)
	if snap.IsDerby {
		price = price.Scale(0.92)
	}
	return price
}

func totalGoalsPrice(sel market.Selection, snap *matchstate.Snapshot, p float64) market.Price {
	total := snap.TotalGoals()
	need := 3 - total // gols que faltam pro over bater

	if sel == market.Over25 {
		return market.Price(190).Scale(1.0 + 0.9*p*float64(need))
	}
	// UNDER encarece conforme o placar se aproxima da linha
	// e barateia conforme o tempo escoa sem gol
	return market.Price(190).
		Scale(1.0 + 0.30*float64(total)).
		Scale(1.0 - 0.80*p)
}

func bttsPrice(sel market.Selection, snap *matchstate.Snapshot, p float64) market.Price {
	// times que ainda não marcaram
	missing := 0
	if snap.HomeScore == 0 {
		missing++
	}
	if snap.AwayScore == 0 {
		missing++
	}

	var price market.Price
	if sel == market.Yes {
		if missing == 2 {
			price = market.Price(180).Scale(1.0 + 1.3*p)
		} else {
			price = market.Price(160).Scale(1.0 + 0.9*p)
		}
		if snap.IsDerby {
			price = price.Scale(0.90)
		}
		return price
	}

	if missing == 2 {
		price = market.Price(200).Scale(1.0 - 0.60*p)
	} else {
		price = market.Price(230).Scale(1.0 - 0.45*p)
	}
	if snap.IsDerby {
		price = price.Scale(1.10)
	}
	return price
}

func nextCornerPrice(sel market.Selection, snap *matchstate.Snapshot, p float64) market.Price {
	price := market.Price(180)
	if sel == market.Away {
		price = 195
	}

	d := snap.Lead()
	if sel == market.Away {
		d = -d
	}
	// quem está atrás ataca mais e força escanteio
	if d < 0 {
		price = price.Scale(0.92)
	} else if d > 0 {
		price = price.Scale(1.08)
	}

	price = price.Scale(1.0 + 0.15*p)
	if snap.IsDerby {
		price = price.Scale(0.95)
	}
	return price
}

func nextCardPrice(sel market.Selection, snap *matchstate.Snapshot, p float64) market.Price {
	price := market.Price(220)

	d := snap.Lead()
	if sel == market.Away {
		d = -d
	}
	if d < 0 {
		price = price.Scale(0.92)
	} else if d > 0 {
		price = price.Scale(1.08)
	}

	// fim de jogo esquenta
	price = price.Scale(1.0 - 0.30*p)
	if snap.IsDerby {
		price = price.Scale(0.88)
	}
	return price
}

func correctScorePrice(sel market.Selection, p float64) market.Price {
	if sel == market.CurrentScore {
		return market.Price(800).Scale(1.0 - 0.85*p)
	}
	return market.Price(130).Scale(1.0 + 2.2*p)
}
