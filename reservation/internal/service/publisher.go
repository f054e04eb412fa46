package service

import (
	"context"

	"github.com/Astemirdum/reservation-service/pkg/kafka"
)

//go:generate go run github.com/golang/mock/mockgen -source=publisher.go -destination=mocks/mock.go

type EventPublisher interface {
	Publish(ctx context.Context, event kafka.ReservationEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, kafka.ReservationEvent) error { return nil }
