package bets

import (
	"context"
	"database/sql"

	"github.com/radieske/live-cashout-engine/internal/engine/fault"
)

// Postgres implementa a leitura de apostas para o caminho de cash-out.
// A escrita de settlement mora no executor (internal/engine/settle),
// que precisa dela dentro da mesma transação do crédito de saldo.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Load carrega a aposta com suas pernas e o tier do dono.
func (p *Postgres) Load(ctx context.Context, betID string) (*Bet, error) {
	const q = `
		SELECT b.id, b.user_id, COALESCE(u.tier, 'BRONZE'), b.stake_cents, b.total_odds,
		       b.potential_win_cents, b.status, b.cashed_out, b.placed_at_minute,
		       b.created_at, b.updated_at
		FROM bets b
		JOIN users u ON u.id = b.user_id
		WHERE b.id = $1;
	`
	var b Bet
	err := p.db.QueryRowContext(ctx, q, betID).Scan(
		&b.ID, &b.UserID, &b.UserTier, &b.StakeCents, &b.TotalOdds,
		&b.PotentialWin, &b.Status, &b.CashedOut, &b.PlacedAtMinute,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fault.NotFound("bet")
	}
	if err != nil {
		return nil, err
	}

	const qs = `
		SELECT match_id, market, selection, odds_at_placement, result
		FROM bet_selections
		WHERE bet_id = $1
		ORDER BY id;
	`
	rows, err := p.db.QueryContext(ctx, qs, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s Selection
		if err := rows.Scan(&s.MatchID, &s.Market, &s.Selection, &s.OddsAtPlacement, &s.Result); err != nil {
			return nil, err
		}
		b.Selections = append(b.Selections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &b, nil
}
