package odds

import (
	"context"
	"database/sql"

	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
)

// BaseOdds são as odds estáticas de MATCH_RESULT capturadas na criação do
// fixture. É a única semente externa do modelo: os demais mercados derivam
// só do snapshot da partida.
type BaseOdds struct {
	Home market.Price
	Draw market.Price
	Away market.Price
}

// BaseSource abstrai a origem das odds base.
type BaseSource interface {
	BaseOdds(ctx context.Context, matchID string) (BaseOdds, error)
}

// PostgresBase lê odds base da tabela match_base_odds.
type PostgresBase struct {
	DB *sql.DB
}

func NewPostgresBase(db *sql.DB) *PostgresBase { return &PostgresBase{DB: db} }

func (p *PostgresBase) BaseOdds(ctx context.Context, matchID string) (BaseOdds, error) {
	const q = `
		SELECT home_price, draw_price, away_price
		FROM match_base_odds
		WHERE match_id = $1;
	`
	var b BaseOdds
	err := p.DB.QueryRowContext(ctx, q, matchID).Scan(&b.Home, &b.Draw, &b.Away)
	if err == sql.ErrNoRows {
		return BaseOdds{}, fault.MissingBaseData(matchID)
	}
	if err != nil {
		return BaseOdds{}, err
	}
	return b, nil
}
