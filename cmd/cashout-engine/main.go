package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/engine/bets"
	"github.com/radieske/live-cashout-engine/internal/engine/cashout"
	"github.com/radieske/live-cashout-engine/internal/engine/matchstate"
	"github.com/radieske/live-cashout-engine/internal/engine/odds"
	"github.com/radieske/live-cashout-engine/internal/engine/oddscache"
	"github.com/radieske/live-cashout-engine/internal/engine/settle"
	"github.com/radieske/live-cashout-engine/internal/httpapi"
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
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres: apostas, odds base, carteiras, ledger
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// Redis: estado corrente das partidas + canal de invalidação
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Kafka: eventos de settlement pro bookkeeping downstream
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetCashedOut)
	defer writer.Close()
	log.Info("kafka writer ready", zap.String("topic", cfg.TopicBetCashedOut))

	// Métricas do engine
	quotesServed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_odds_quotes_served_total", Help: "cotações servidas por origem",
	}, []string{"source"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_cashouts_settled_total", Help: "cash-outs liquidados",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_cashout_conflicts_total", Help: "CAS de status perdeu a corrida",
	})
	prometheus.MustRegister(quotesServed, settled, conflicts)

	// Composição do engine. O cache de odds é instância explícita daqui,
	// injetada onde precisa — sem global.
	feed := matchstate.NewRedisFeed(redisClient)
	baseSource := odds.NewPostgresBase(pg)
	quoteCache := oddscache.New[[]odds.Quote](cfg.OddsCacheTTL)

	quoter := &odds.Quoter{
		Log:   log,
		Feed:  feed,
		Base:  baseSource,
		Cache: quoteCache,
		OnServed: func(source string) {
			quotesServed.WithLabelValues(source).Inc()
		},
	}

	valuator := &cashout.Valuator{
		Log:  log,
		Feed: feed,
		Base: baseSource,
		Elig: &cashout.Eligibility{
			MinMinute:      cfg.CashoutMinMinute,
			MaxMinute:      cfg.CashoutMaxMinute,
			MinMinutesHeld: cfg.MinMinutesHeld,
		},
		FloorFraction: cfg.FloorFraction,
	}

	betRepo := bets.NewPostgres(pg)
	executor := &settle.Executor{
		Log:        log,
		Bets:       betRepo,
		Valuator:   valuator,
		Store:      settle.NewPostgres(pg),
		Publisher:  settle.NewKafkaPublisher(writer),
		Tolerance:  cfg.StaleTolerance,
		Timeout:    cfg.SettleTimeout,
		OnSettled:  func() { settled.Inc() },
		OnConflict: func() { conflicts.Inc() },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ticks novos do feed invalidam as cotações memorizadas da partida
	matchstate.StartInvalidator(ctx, redisClient, cfg.RedisPubSubChannel, quoteCache.Invalidate, log)

	// metrics/health em porta separada
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health listening", zap.String("addr", ":"+cfg.MetricsPort))

	api := &httpapi.API{
		Log:      log,
		Quoter:   quoter,
		Bets:     betRepo,
		Valuator: valuator,
		Executor: executor,
	}

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	log.Info("cashout-engine listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
