package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Astemirdum/reservation-service/pkg/circuit_breaker"
	"github.com/Astemirdum/reservation-service/pkg/kafka"
	"github.com/Astemirdum/reservation-service/reservation/internal/service"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const (
	cbRecordLength     = 20
	cbTimeout          = 10 * time.Second
	cbPercentile       = 0.5
	cbRecoveryRequests = 3
)

type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
}

var _ service.EventPublisher = (*Publisher)(nil)

func NewPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *Publisher {
	if topic == "" {
		topic = kafka.ReservationTopic
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       circuit_breaker.New(cbRecordLength, cbTimeout, cbPercentile, cbRecoveryRequests),
		log:      log.Named("publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event kafka.ReservationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.RoomID),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return err
		}
		p.log.Debug("event sent",
			zap.String("event_type", string(event.EventType)),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
