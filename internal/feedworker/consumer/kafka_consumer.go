package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// Reader é o subconjunto de kafka.Reader que o processor usa (injetável nos testes).
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Repo define as escritas de persistência usadas pelo processor.
type Repo interface {
	UpsertCurrent(ctx context.Context, e events.MatchTick) error
	InsertHistory(ctx context.Context, e events.MatchTick) error
}

// StateCache define a escrita do estado corrente consumido pelo engine.
type StateCache interface {
	SetCurrent(ctx context.Context, e events.MatchTick) error
}

// Broadcaster notifica o engine de que uma partida mudou de estado.
type Broadcaster interface {
	Broadcast(ctx context.Context, e events.MatchTick) error
}

// Processor consome ticks de partida do Kafka, atualiza o estado corrente
// no Redis, persiste no Postgres e notifica o engine via Pub/Sub.
// Callbacks de métricas podem ser usadas para monitoramento de cada etapa.
type Processor struct {
	Log         *zap.Logger
	Reader      Reader
	Repo        Repo
	Cache       StateCache
	Broadcaster Broadcaster

	OnConsumed func()       // métricas (counter++)
	OnCached   func()       // métricas
	OnPersist  func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo e processamento dos ticks.
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if p.OnConsumed != nil {
			p.OnConsumed()
		}

		// Handle já loga e conta o erro por estágio; o loop só segue pro próximo tick
		_ = p.Handle(ctx, m.Value)
	}
}

// Handle processa um tick individual. Separado do loop pra ser testável.
func (p *Processor) Handle(ctx context.Context, payload []byte) error {
	var ev events.MatchTick
	if err := json.Unmarshal(payload, &ev); err != nil {
		p.Log.Warn("invalid tick", zap.Error(err))
		if p.OnError != nil {
			p.OnError("decode")
		}
		return err
	}

	// Atualiza o estado corrente no Redis (caminho quente do engine)
	if err := p.Cache.SetCurrent(ctx, ev); err != nil {
		p.Log.Warn("redis set failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("cache")
		}
		// não bloqueia persistência se falhar o cache
	} else if p.OnCached != nil {
		p.OnCached()
	}

	// Persiste estado corrente e histórico no Postgres
	if err := p.Repo.UpsertCurrent(ctx, ev); err != nil {
		p.Log.Warn("db upsert failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("db_upsert")
		}
		return err
	}
	if err := p.Repo.InsertHistory(ctx, ev); err != nil {
		p.Log.Warn("db insert history failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError("db_history")
		}
		return err
	}
	if p.OnPersist != nil {
		p.OnPersist()
	}

	// Notifica o engine pra invalidar o cache de odds da partida
	if p.Broadcaster != nil {
		if err := p.Broadcaster.Broadcast(ctx, ev); err != nil {
			p.Log.Warn("pubsub broadcast failed", zap.Error(err))
			if p.OnError != nil {
				p.OnError("broadcast")
			}
		}
	}

	return nil
}
