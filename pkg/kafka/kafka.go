package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const ReservationTopic = "reservation-events"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"RESERVATION_EVENTS_TOPIC" default:"reservation-events"`
}

func (c Config) Enabled() bool {
	for _, addr := range c.Addrs {
		if addr != "" {
			return true
		}
	}
	return false
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Partitioner = sarama.NewHashPartitioner

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

type EventType string

const (
	ReservationCreated   EventType = "reservation.created"
	ReservationCancelled EventType = "reservation.cancelled"
)

// ReservationEvent is keyed by RoomID so that events of one room stay ordered.
type ReservationEvent struct {
	EventType     EventType `json:"eventType"`
	ReservationID string    `json:"reservationId"`
	RoomID        string    `json:"roomId"`
	UserID        string    `json:"userId"`
	CheckIn       string    `json:"checkIn"`
	CheckOut      string    `json:"checkOut"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}
