package bets

import (
	"time"

	"github.com/radieske/live-cashout-engine/internal/engine/market"
)

// Status de uma aposta. Transições são monotônicas e de mão única:
// PENDING é o único estado de onde se sai; os demais são terminais.
type Status string

const (
	Pending   Status = "PENDING"
	Won       Status = "WON"
	Lost      Status = "LOST"
	CashedOut Status = "CASHED_OUT"
)

// LegResult é o resultado de uma seleção individual.
type LegResult string

const (
	LegPending LegResult = "PENDING"
	LegWon     LegResult = "WON"
	LegLost    LegResult = "LOST"
)

// Tier de fidelidade do usuário; define o margin factor do cash-out.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Selection é uma perna da aposta. Imutável depois que a partida encerra.
type Selection struct {
	MatchID         string
	Market          market.Market
	Selection       market.Selection
	OddsAtPlacement market.Price
	Result          LegResult
}

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID             string
	UserID         string
	UserTier       Tier
	StakeCents     int64
	TotalOdds      market.Price
	PotentialWin   int64
	Status         Status
	CashedOut      bool
	PlacedAtMinute int // minuto de jogo no placement (apostas ao vivo)
	Selections     []Selection
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Accumulator indica aposta múltipla (2+ pernas).
func (b *Bet) Accumulator() bool { return len(b.Selections) > 1 }

// LongAccumulator indica múltipla longa (4+ pernas), onde o cash-out
// parcial é permitido mesmo sem perna ao vivo.
func (b *Bet) LongAccumulator() bool { return len(b.Selections) >= 4 }
