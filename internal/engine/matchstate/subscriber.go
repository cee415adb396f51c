package matchstate

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartInvalidator assina o canal Pub/Sub de ticks e chama invalidate
// com o match_id de cada mensagem. É assim que o cache de odds do engine
// expira antes do TTL quando o feed (ou um override manual) publica
// estado novo.
func StartInvalidator(ctx context.Context, r *redis.Client, channel string, invalidate func(matchID string), log *zap.Logger) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close() // encerra a inscrição ao finalizar o contexto
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				invalidate(msg.Payload)
				log.Debug("odds cache invalidated", zap.String("match_id", msg.Payload))
			}
		}
	}()
}
