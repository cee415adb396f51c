package settle

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/live-cashout-engine/internal/engine/fault"
)

// Store executa a unidade atômica do settlement: CAS de status da aposta,
// crédito de saldo e entrada append-only no ledger — tudo ou nada.
type Store interface {
	SettleCashOut(ctx context.Context, betID, userID string, valueCents int64) (newBalance int64, err error)
}

// Postgres implementa o settlement numa única transação com lock de linha.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// SettleCashOut faz a transição PENDING -> CASHED_OUT.
//
// O SELECT ... FOR UPDATE na aposta serializa execuções concorrentes; a
// reconferência do status dentro do lock é o compare-and-swap: se outro
// settlement chegou primeiro, aborta com Conflict sem aplicar nada.
func (p *Postgres) SettleCashOut(ctx context.Context, betID, userID string, valueCents int64) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1 FOR UPDATE`, betID).Scan(&status)
	if err == sql.ErrNoRows {
		return 0, fault.NotFound("bet")
	}
	if err != nil {
		return 0, err
	}

	if status != "PENDING" {
		return 0, fault.Conflict()
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets
		SET status='CASHED_OUT', cashed_out=true, cashout_value_cents=$2, updated_at=now()
		WHERE id=$1`, betID, valueCents); err != nil {
		return 0, err
	}

	var walletID string
	var balanceBefore int64
	if err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &balanceBefore); err != nil {
		return 0, err
	}

	newBalance := balanceBefore + valueCents
	if _, err = tx.ExecContext(ctx,
		`UPDATE wallets SET balance_cents=$1, version=version+1 WHERE id=$2`,
		newBalance, walletID); err != nil {
		return 0, err
	}

	// registro auditável, nunca mutado depois
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(id, wallet_id, operation_type, amount_cents,
		                          balance_before_cents, balance_after_cents, reference)
		VALUES($1,$2,'CASH_OUT',$3,$4,$5,$6)`,
		uuid.NewString(), walletID, valueCents, balanceBefore, newBalance, betID); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}
