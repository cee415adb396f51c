package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// RedisCache mantém o estado corrente de cada partida em
// "match:state:{matchID}", lido pelo cashout-engine via matchstate.RedisFeed.
type RedisCache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedisCache(r *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{R: r, TTL: ttl}
}

func stateKey(matchID string) string { return "match:state:" + matchID }

// SetCurrent grava o snapshot corrente no formato que o engine consome.
func (c *RedisCache) SetCurrent(ctx context.Context, e events.MatchTick) error {
	snap := map[string]any{
		"matchId":   e.MatchID,
		"homeTeam":  e.HomeTeam,
		"awayTeam":  e.AwayTeam,
		"minute":    e.Minute,
		"homeScore": e.HomeScore,
		"awayScore": e.AwayScore,
		"status":    e.Status,
		"isDerby":   e.IsDerby,
		"updatedAt": e.UpdatedAt,
		"version":   e.Version,
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, stateKey(e.MatchID), b, c.TTL).Err()
}
