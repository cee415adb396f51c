package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/feedworker/cache"
	"github.com/radieske/live-cashout-engine/internal/feedworker/consumer"
	"github.com/radieske/live-cashout-engine/internal/feedworker/pubsub"
	"github.com/radieske/live-cashout-engine/internal/feedworker/repository"
	sharedcache "github.com/radieske/live-cashout-engine/internal/shared/cache"
	"github.com/radieske/live-cashout-engine/internal/shared/config"
	"github.com/radieske/live-cashout-engine/internal/shared/db"
	sharedkafka "github.com/radieske/live-cashout-engine/internal/shared/kafka"
	"github.com/radieske/live-cashout-engine/internal/shared/logger"
	"github.com/radieske/live-cashout-engine/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Estado corrente expira sozinho se o feed parar de publicar
	stateTTL := 120 * time.Second
	rcache := cache.NewRedisCache(redisClient, stateTTL)
	repo := repository.NewPostgresRepo(pg)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel)

	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchTicks, "feed-worker")
	defer reader.Close()

	// Métricas Prometheus para monitoramento do processamento
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_ticks_consumed_total", Help: "ticks consumidos"})
	cached := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_cache_sets_total", Help: "sets no cache"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "feed_db_writes_total", Help: "escritas no banco (upsert+history)"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "feed_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, cached, persist, errorsBy)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Repo:        repo,
		Cache:       rcache,
		Broadcaster: broadcaster,
		OnConsumed:  func() { consumed.Inc() },
		OnCached:    func() { cached.Inc() },
		OnPersist:   func() { persist.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("feed-worker running", zap.String("topic", cfg.TopicMatchTicks))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped", zap.Error(err))
	}
	log.Info("shutdown")
}
