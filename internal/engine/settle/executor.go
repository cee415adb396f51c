package settle

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/cashout"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// BetLoader carrega a aposta com pernas e tier do dono.
type BetLoader interface {
	Load(ctx context.Context, betID string) (*bets.Bet, error)
}

// Publisher emite o evento de settlement para os sistemas de bookkeeping.
type Publisher interface {
	PublishBetCashedOut(ctx context.Context, e events.BetCashedOut) error
}

// Result é o desfecho de um settlement aceito.
type Result struct {
	BetID      string         `json:"betId"`
	ValueCents int64          `json:"value_cents"`
	NewBalance int64          `json:"new_balance_cents"`
	Quote      *cashout.Quote `json:"quote"`
	SettledAt  time.Time      `json:"settledAt"`
}

// Executor materializa a transição PENDING -> CASHED_OUT. Nunca confia em
// cotação anterior a "agora": revalida elegibilidade e recomputa o valor
// dentro da própria execução.
type Executor struct {
	Log       *zap.Logger
	Bets      BetLoader
	Valuator  *cashout.Valuator
	Store     Store
	Publisher Publisher

	Tolerance float64       // divergência máxima vs. valor confirmado pelo cliente
	Timeout   time.Duration // teto da unidade atômica; estouro vira falha de infra, não hang

	OnSettled  func()
	OnConflict func()
}

// Execute roda o cash-out até um aceite/rejeite definitivo. Depois que a
// unidade atômica começa, não há cancelamento no meio do caminho.
func (e *Executor) Execute(ctx context.Context, betID, userID string, confirmValue int64, strat cashout.Strategy) (*Result, error) {
	bet, err := e.Bets.Load(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.UserID != userID {
		return nil, fault.Unauthorized()
	}

	// recomputa com snapshot fresco; elegibilidade roda dentro do Quote
	quote, err := e.Valuator.Quote(ctx, bet, strat)
	if err != nil {
		return nil, err
	}

	// valor confirmado pelo cliente precisa bater com o recalculado
	if confirmValue > 0 {
		diff := math.Abs(float64(confirmValue - quote.ValueCents))
		if diff/float64(quote.ValueCents) > e.Tolerance {
			return nil, fault.StaleQuote(confirmValue, quote.ValueCents)
		}
	}

	settleCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		settleCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	newBalance, err := e.Store.SettleCashOut(settleCtx, betID, userID, quote.ValueCents)
	if err != nil {
		if fault.KindOf(err) == fault.KindConflict && e.OnConflict != nil {
			e.OnConflict()
		}
		return nil, err
	}

	if e.OnSettled != nil {
		e.OnSettled()
	}

	settledAt := time.Now()

	// best effort: a aposta já está liquidada; falha de publish não desfaz nada
	if e.Publisher != nil {
		if err := e.Publisher.PublishBetCashedOut(ctx, events.BetCashedOut{
			BetID:         betID,
			UserID:        userID,
			ValueCents:    quote.ValueCents,
			StakeCents:    bet.StakeCents,
			NewBalance:    newBalance,
			Strategy:      string(quote.Strategy),
			SettledUnixMs: settledAt.UnixMilli(),
		}); err != nil {
			e.Log.Warn("publish bet_cashed_out failed",
				zap.String("bet_id", betID),
				zap.Error(err),
			)
		}
	}

	e.Log.Info("cash-out settled",
		zap.String("bet_id", betID),
		zap.String("user_id", userID),
		zap.Int64("value_cents", quote.ValueCents),
		zap.String("strategy", string(quote.Strategy)),
	)

	return &Result{
		BetID:      betID,
		ValueCents: quote.ValueCents,
		NewBalance: newBalance,
		Quote:      quote,
		SettledAt:  settledAt,
	}, nil
}
