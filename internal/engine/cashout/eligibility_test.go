package cashout

import (
	"testing"

	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
)

func defaultElig() *Eligibility {
	return &Eligibility{MinMinute: 5, MaxMinute: 75, MinMinutesHeld: 2}
}

func singleBet(placedAt int) *bets.Bet {
	return &bets.Bet{
		ID:             "B1",
		UserID:         "U1",
		Status:         bets.Pending,
		StakeCents:     1000,
		PotentialWin:   2500,
		PlacedAtMinute: placedAt,
		Selections: []bets.Selection{
			{MatchID: "M1", Market: market.MatchResult, Selection: market.Home, OddsAtPlacement: 250, Result: bets.LegPending},
		},
	}
}

func snapsAt(minute int, status matchstate.Status) map[string]*matchstate.Snapshot {
	return map[string]*matchstate.Snapshot{
		"M1": {MatchID: "M1", Minute: minute, Status: status},
	}
}

func reasonOf(t *testing.T, err error) fault.Reason {
	t.Helper()
	if err == nil {
		t.Fatal("expected ineligibility error")
	}
	if fault.KindOf(err) != fault.KindIneligible {
		t.Fatalf("expected Ineligible kind, got %v", err)
	}
	return fault.ReasonOf(err)
}

func TestEligibleInsideWindow(t *testing.T) {
	if err := defaultElig().Check(singleBet(10), snapsAt(30, matchstate.Live)); err != nil {
		t.Fatalf("expected eligible, got %v", err)
	}
}

func TestNotPendingIsAlreadySettled(t *testing.T) {
	b := singleBet(10)
	b.Status = bets.CashedOut
	if r := reasonOf(t, defaultElig().Check(b, snapsAt(30, matchstate.Live))); r != fault.ReasonAlreadySettled {
		t.Errorf("reason = %s", r)
	}

	b = singleBet(10)
	b.CashedOut = true
	if r := reasonOf(t, defaultElig().Check(b, snapsAt(30, matchstate.Live))); r != fault.ReasonAlreadySettled {
		t.Errorf("reason = %s", r)
	}
}

func TestScheduledOnlyIsNotLive(t *testing.T) {
	if r := reasonOf(t, defaultElig().Check(singleBet(0), snapsAt(0, matchstate.Scheduled))); r != fault.ReasonMatchNotLive {
		t.Errorf("reason = %s", r)
	}
}

func TestFinishedOnlyIsNotLive(t *testing.T) {
	if r := reasonOf(t, defaultElig().Check(singleBet(10), snapsAt(90, matchstate.Finished))); r != fault.ReasonMatchNotLive {
		t.Errorf("reason = %s", r)
	}
}

func TestWindowEdges(t *testing.T) {
	cases := []struct {
		minute   int
		placedAt int
		want     fault.Reason
	}{
		{minute: 4, placedAt: 0, want: fault.ReasonOutsideWindow},
		{minute: 75, placedAt: 10, want: fault.ReasonOutsideWindow},
		{minute: 80, placedAt: 10, want: fault.ReasonOutsideWindow},
		{minute: 10, placedAt: 9, want: fault.ReasonTooSoon},
		{minute: 5, placedAt: 3, want: ""}, // minuto 5 incluso, 2 minutos corridos
		{minute: 74, placedAt: 10, want: ""},
	}

	for _, tc := range cases {
		err := defaultElig().Check(singleBet(tc.placedAt), snapsAt(tc.minute, matchstate.Live))
		if tc.want == "" {
			if err != nil {
				t.Errorf("minute=%d placedAt=%d: expected eligible, got %v", tc.minute, tc.placedAt, err)
			}
			continue
		}
		if r := reasonOf(t, err); r != tc.want {
			t.Errorf("minute=%d placedAt=%d: reason = %s, want %s", tc.minute, tc.placedAt, r, tc.want)
		}
	}
}

func TestAccumulatorNeedsOneLiveLeg(t *testing.T) {
	b := &bets.Bet{
		ID: "B2", UserID: "U1", Status: bets.Pending, StakeCents: 1000, PotentialWin: 9000,
		Selections: []bets.Selection{
			{MatchID: "M1", Market: market.MatchResult, Selection: market.Home, OddsAtPlacement: 200},
			{MatchID: "M2", Market: market.BTTS, Selection: market.Yes, OddsAtPlacement: 180},
		},
	}
	snaps := map[string]*matchstate.Snapshot{
		"M1": {MatchID: "M1", Status: matchstate.Finished, Minute: 90, HomeScore: 1},
		"M2": {MatchID: "M2", Status: matchstate.Scheduled},
	}

	if r := reasonOf(t, defaultElig().Check(b, snaps)); r != fault.ReasonMatchNotLive {
		t.Errorf("reason = %s", r)
	}

	// com uma perna ao vivo passa, sem regra de janela (é múltipla)
	snaps["M2"].Status = matchstate.Live
	snaps["M2"].Minute = 2 // fora da janela de simples; múltipla não aplica
	if err := defaultElig().Check(b, snaps); err != nil {
		t.Errorf("accumulator with a live leg should be eligible, got %v", err)
	}
}

func TestLongAccumulatorExemptFromLiveRule(t *testing.T) {
	b := &bets.Bet{
		ID: "B3", UserID: "U1", Status: bets.Pending, StakeCents: 1000, PotentialWin: 50000,
		Selections: make([]bets.Selection, 4),
	}
	for i := range b.Selections {
		b.Selections[i] = bets.Selection{MatchID: "M1", Market: market.BTTS, Selection: market.Yes, OddsAtPlacement: 180}
	}

	if err := defaultElig().Check(b, snapsAt(0, matchstate.Scheduled)); err != nil {
		t.Errorf("long accumulator should be exempt from the live-leg rule, got %v", err)
	}
}
