package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"github.com/Astemirdum/reservation-service/reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	CreateReservation(ctx context.Context, userID, roomID string, checkIn, checkOut time.Time) (model.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) (bool, error)
	EditReservation(ctx context.Context, reservationID string, newCheckIn, newCheckOut time.Time) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationID string) (model.Reservation, error)
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
}

var _ ReservationService = (*service.Service)(nil)
