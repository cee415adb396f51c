package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// PostgresRepo persiste o estado corrente e o histórico de ticks das partidas.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertCurrent insere ou atualiza o estado corrente em match_current.
// ON CONFLICT garante atomicidade por match_id; versões antigas que
// cheguem fora de ordem não regridem o estado.
func (r *PostgresRepo) UpsertCurrent(ctx context.Context, e events.MatchTick) error {
	const q = `
		INSERT INTO match_current
		  (match_id, home_team, away_team, minute, home_score, away_score, status, is_derby, version, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (match_id) DO UPDATE SET
		  minute = EXCLUDED.minute,
		  home_score = EXCLUDED.home_score,
		  away_score = EXCLUDED.away_score,
		  status = EXCLUDED.status,
		  version = EXCLUDED.version,
		  updated_at = EXCLUDED.updated_at
		WHERE match_current.version < EXCLUDED.version;
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.MatchID, e.HomeTeam, e.AwayTeam, e.Minute, e.HomeScore, e.AwayScore,
		e.Status, e.IsDerby, e.Version, e.UpdatedAt,
	)
	return err
}

// InsertHistory registra o tick no histórico append-only.
func (r *PostgresRepo) InsertHistory(ctx context.Context, e events.MatchTick) error {
	const q = `
		INSERT INTO match_tick_history
		  (match_id, minute, home_score, away_score, status, version, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7);
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.MatchID, e.Minute, e.HomeScore, e.AwayScore, e.Status, e.Version, e.UpdatedAt,
	)
	return err
}
