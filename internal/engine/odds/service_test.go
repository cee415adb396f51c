package odds

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/fault"
	"github.com/radieske/live-cashout-engine/internal/engine/market"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
	"github.com/radieske/live-cashout-engine/internal/engine/oddscache"
)

type stubFeed struct {
	snap  *matchstate.Snapshot
	calls int
}

func (f *stubFeed) Get(ctx context.Context, matchID string) (*matchstate.Snapshot, error) {
	f.calls++
	if f.snap == nil {
		return nil, matchstate.ErrMatchNotFound
	}
	return f.snap, nil
}

type stubBase struct {
	base BaseOdds
	err  error
}

func (b *stubBase) BaseOdds(ctx context.Context, matchID string) (BaseOdds, error) {
	if b.err != nil {
		return BaseOdds{}, b.err
	}
	return b.base, nil
}

func newQuoter(feed *stubFeed, base *stubBase) *Quoter {
	return &Quoter{
		Log:   zap.NewNop(),
		Feed:  feed,
		Base:  base,
		Cache: oddscache.New[[]Quote](20 * time.Second),
	}
}

func TestQuoteMatchServesFromCache(t *testing.T) {
	feed := &stubFeed{snap: liveSnap(30, 1, 0)}
	q := newQuoter(feed, &stubBase{base: testBase})

	first, err := q.QuoteMatch(context.Background(), "M1", nil)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := q.QuoteMatch(context.Background(), "M1", nil)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if feed.calls != 1 {
		t.Errorf("expected single model computation, feed called %d times", feed.calls)
	}
	if len(first) != len(second) {
		t.Errorf("cached set should be returned verbatim: %d vs %d", len(first), len(second))
	}
}

func TestQuoteMatchRecomputesAfterInvalidate(t *testing.T) {
	feed := &stubFeed{snap: liveSnap(30, 1, 0)}
	q := newQuoter(feed, &stubBase{base: testBase})

	if _, err := q.QuoteMatch(context.Background(), "M1", nil); err != nil {
		t.Fatal(err)
	}
	q.Cache.Invalidate("M1")
	if _, err := q.QuoteMatch(context.Background(), "M1", nil); err != nil {
		t.Fatal(err)
	}

	if feed.calls != 2 {
		t.Errorf("invalidation should force recompute, feed called %d times", feed.calls)
	}
}

func TestQuoteMatchMissingBaseOdds(t *testing.T) {
	feed := &stubFeed{snap: liveSnap(30, 0, 0)}
	q := newQuoter(feed, &stubBase{err: fault.MissingBaseData("M1")})

	_, err := q.QuoteMatch(context.Background(), "M1", nil)
	if fault.KindOf(err) != fault.KindMissingBaseData {
		t.Fatalf("expected MissingBaseData, got %v", err)
	}
}

func TestQuoteMatchFilterSkipsBaseOdds(t *testing.T) {
	feed := &stubFeed{snap: liveSnap(30, 0, 0)}
	// base quebrada de propósito: filtro fora de MATCH_RESULT não pode consultá-la
	q := newQuoter(feed, &stubBase{err: fault.MissingBaseData("M1")})

	m := market.BTTS
	quotes, err := q.QuoteMatch(context.Background(), "M1", &m)
	if err != nil {
		t.Fatalf("BTTS filter should not need base odds: %v", err)
	}
	if len(quotes) != len(market.Selections(market.BTTS)) {
		t.Errorf("expected %d quotes, got %d", len(market.Selections(market.BTTS)), len(quotes))
	}
	for _, qt := range quotes {
		if qt.Market != market.BTTS {
			t.Errorf("unexpected market %s in filtered result", qt.Market)
		}
	}
}

func TestQuoteMatchUnknownMatch(t *testing.T) {
	q := newQuoter(&stubFeed{}, &stubBase{base: testBase})

	_, err := q.QuoteMatch(context.Background(), "NOPE", nil)
	if fault.KindOf(err) != fault.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
