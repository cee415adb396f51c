package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// RedisBroadcaster publica o match_id de cada tick processado no canal
// Pub/Sub. O cashout-engine assina o canal para invalidar o cache de odds
// da partida; overrides manuais de odds usam o mesmo caminho.
type RedisBroadcaster struct {
	R       *redis.Client
	Channel string
}

func NewRedisBroadcaster(r *redis.Client, channel string) *RedisBroadcaster {
	return &RedisBroadcaster{R: r, Channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, e events.MatchTick) error {
	return b.R.Publish(ctx, b.Channel, e.MatchID).Err()
}
