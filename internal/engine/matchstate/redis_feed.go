package matchstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Feed abstrai a leitura do estado corrente de uma partida.
// A implementação de produção lê as chaves mantidas pelo feed-worker.
type Feed interface {
	Get(ctx context.Context, matchID string) (*Snapshot, error)
}

// ErrMatchNotFound sinaliza ausência da chave de estado no Redis.
var ErrMatchNotFound = fmt.Errorf("match state not found")

// RedisFeed lê snapshots em "match:state:{matchID}", escritos pelo feed-worker.
type RedisFeed struct {
	R *redis.Client
}

func NewRedisFeed(r *redis.Client) *RedisFeed { return &RedisFeed{R: r} }

func stateKey(matchID string) string { return "match:state:" + matchID }

func (f *RedisFeed) Get(ctx context.Context, matchID string) (*Snapshot, error) {
	b, err := f.R.Get(ctx, stateKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get match state: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode match state: %w", err)
	}
	return &s, nil
}
