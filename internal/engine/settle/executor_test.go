package settle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/cashout"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
	"github.com/radieske/live-cashout-engine/internal/engine/odds"
	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

type stubFeed map[string]*matchstate.Snapshot

func (f stubFeed) Get(ctx context.Context, matchID string) (*matchstate.Snapshot, error) {
	if s, ok := f[matchID]; ok {
		return s, nil
	}
	return nil, matchstate.ErrMatchNotFound
}

type stubBase struct{}

func (stubBase) BaseOdds(ctx context.Context, matchID string) (odds.BaseOdds, error) {
	return odds.BaseOdds{Home: 300, Draw: 320, Away: 400}, nil
}

type memLoader struct{ bet bets.Bet }

func (l *memLoader) Load(ctx context.Context, betID string) (*bets.Bet, error) {
	if betID != l.bet.ID {
		return nil, fault.NotFound("bet")
	}
	b := l.bet
	b.Selections = append([]bets.Selection(nil), l.bet.Selections...)
	return &b, nil
}

// memStore reproduz a semântica do CAS transacional: status confere e
// troca sob o mesmo lock, crédito e ledger juntos ou nada.
type memStore struct {
	mu      sync.Mutex
	status  map[string]string
	balance map[string]int64
	ledger  int
}

func newMemStore(betID, userID string) *memStore {
	return &memStore{
		status:  map[string]string{betID: "PENDING"},
		balance: map[string]int64{userID: 5000},
	}
}

func (s *memStore) SettleCashOut(ctx context.Context, betID, userID string, valueCents int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.status[betID]
	if !ok {
		return 0, fault.NotFound("bet")
	}
	if st != "PENDING" {
		return 0, fault.Conflict()
	}
	s.status[betID] = "CASHED_OUT"
	s.balance[userID] += valueCents
	s.ledger++
	return s.balance[userID], nil
}

type memPublisher struct {
	mu     sync.Mutex
	events []events.BetCashedOut
	err    error
}

func (p *memPublisher) PublishBetCashedOut(ctx context.Context, e events.BetCashedOut) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func liveBet() bets.Bet {
	return bets.Bet{
		ID:             "B1",
		UserID:         "U1",
		UserTier:       bets.TierBronze,
		Status:         bets.Pending,
		StakeCents:     1000,
		PotentialWin:   2500,
		PlacedAtMinute: 10,
		Selections: []bets.Selection{
			{MatchID: "M1", Market: market.MatchResult, Selection: market.Home, OddsAtPlacement: 250, Result: bets.LegPending},
		},
	}
}

func newExecutor(store Store, pub Publisher) *Executor {
	feed := stubFeed{"M1": {MatchID: "M1", Minute: 40, HomeScore: 1, AwayScore: 0, Status: matchstate.Live}}
	return &Executor{
		Log:  zap.NewNop(),
		Bets: &memLoader{bet: liveBet()},
		Valuator: &cashout.Valuator{
			Log:           zap.NewNop(),
			Feed:          feed,
			Base:          stubBase{},
			Elig:          &cashout.Eligibility{MinMinute: 5, MaxMinute: 75, MinMinutesHeld: 2},
			FloorFraction: 0.10,
		},
		Store:     store,
		Publisher: pub,
		Tolerance: 0.05,
		Timeout:   3 * time.Second,
	}
}

func TestExecuteCreditsWalletOnce(t *testing.T) {
	store := newMemStore("B1", "U1")
	pub := &memPublisher{}
	ex := newExecutor(store, pub)

	res, err := ex.Execute(context.Background(), "B1", "U1", 0, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.ValueCents <= 0 {
		t.Fatalf("value = %d", res.ValueCents)
	}
	if res.NewBalance != 5000+res.ValueCents {
		t.Errorf("balance = %d, want %d", res.NewBalance, 5000+res.ValueCents)
	}
	if store.ledger != 1 {
		t.Errorf("ledger entries = %d, want 1", store.ledger)
	}
	if len(pub.events) != 1 || pub.events[0].BetID != "B1" || pub.events[0].ValueCents != res.ValueCents {
		t.Errorf("published events = %+v", pub.events)
	}
}

func TestConcurrentExecutesSettleExactlyOnce(t *testing.T) {
	store := newMemStore("B1", "U1")
	ex := newExecutor(store, &memPublisher{})

	var settled, conflicted int32
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ex.Execute(context.Background(), "B1", "U1", 0, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				settled++
			case fault.KindOf(err) == fault.KindConflict:
				conflicted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if settled != 1 {
		t.Errorf("settled %d times, want exactly 1", settled)
	}
	if conflicted != 7 {
		t.Errorf("conflicts = %d, want 7", conflicted)
	}
	if store.ledger != 1 {
		t.Errorf("ledger entries = %d, want 1", store.ledger)
	}
}

func TestExecuteConflictCallback(t *testing.T) {
	store := newMemStore("B1", "U1")
	store.status["B1"] = "CASHED_OUT"

	ex := newExecutor(store, &memPublisher{})
	conflicts := 0
	ex.OnConflict = func() { conflicts++ }

	_, err := ex.Execute(context.Background(), "B1", "U1", 0, "")
	if fault.KindOf(err) != fault.KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if conflicts != 1 {
		t.Errorf("OnConflict fired %d times", conflicts)
	}
}

func TestExecuteToleratesConfirmWithinBand(t *testing.T) {
	store := newMemStore("B1", "U1")
	ex := newExecutor(store, &memPublisher{})

	// valor corrente pela mesma valuator, mesma foto de jogo
	bet := liveBet()
	quote, err := ex.Valuator.Quote(context.Background(), &bet, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	res, err := ex.Execute(context.Background(), "B1", "U1", quote.ValueCents, "")
	if err != nil {
		t.Fatalf("confirm at quoted value should pass: %v", err)
	}
	if res.ValueCents != quote.ValueCents {
		t.Errorf("settled %d, quoted %d", res.ValueCents, quote.ValueCents)
	}
}

func TestExecuteRejectsStaleConfirm(t *testing.T) {
	store := newMemStore("B1", "U1")
	ex := newExecutor(store, &memPublisher{})

	bet := liveBet()
	quote, err := ex.Valuator.Quote(context.Background(), &bet, "")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	_, err = ex.Execute(context.Background(), "B1", "U1", quote.ValueCents*2, "")
	if fault.KindOf(err) != fault.KindStaleQuote {
		t.Fatalf("expected StaleQuote, got %v", err)
	}
	if store.status["B1"] != "PENDING" {
		t.Error("stale confirm must not settle the bet")
	}
}

func TestExecuteUnauthorized(t *testing.T) {
	ex := newExecutor(newMemStore("B1", "U1"), &memPublisher{})

	_, err := ex.Execute(context.Background(), "B1", "U2", 0, "")
	if fault.KindOf(err) != fault.KindUnauthorized {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestExecuteSurvivesPublishFailure(t *testing.T) {
	store := newMemStore("B1", "U1")
	pub := &memPublisher{err: errors.New("broker down")}
	ex := newExecutor(store, pub)

	res, err := ex.Execute(context.Background(), "B1", "U1", 0, "")
	if err != nil {
		t.Fatalf("publish failure must not fail the settlement: %v", err)
	}
	if store.status["B1"] != "CASHED_OUT" {
		t.Error("bet should be settled despite publish failure")
	}
	if res.NewBalance != 5000+res.ValueCents {
		t.Errorf("balance = %d", res.NewBalance)
	}
}
