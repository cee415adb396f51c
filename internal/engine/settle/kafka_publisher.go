package settle

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

// KafkaPublisher emite eventos de settlement no tópico bet_cashed_out.
type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) PublishBetCashedOut(ctx context.Context, e events.BetCashedOut) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.BetID),
		Value: b,
	})
}
