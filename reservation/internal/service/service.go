package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/reservation-service/pkg/kafka"
	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"github.com/Astemirdum/reservation-service/reservation/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "reservation/service"

// Service owns every status transition of a reservation: it creates them
// ACTIVE and moves them to CANCELLED. It keeps no state between calls.
type Service struct {
	log    *zap.Logger
	repo   repository.Repository
	events EventPublisher
	tracer trace.Tracer
	newID  func() string
	now    func() time.Time
}

type Option func(*Service)

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

// WithTracerProvider replaces the global otel provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:    log.Named("service"),
		repo:   repo,
		events: nopPublisher{},
		tracer: otel.Tracer(tracerName),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReservation validates the dates, checks the room and stores a new
// ACTIVE reservation. The repository is not touched when the dates are invalid.
func (s *Service) CreateReservation(ctx context.Context, userID, roomID string, checkIn, checkOut time.Time) (model.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "service.reservation.create", trace.WithAttributes(
		attribute.String("room_id", roomID),
		attribute.String("user_id", userID),
	))
	defer span.End()

	checkIn, checkOut = model.DateOf(checkIn), model.DateOf(checkOut)
	if err := validateDates(checkIn, checkOut); err != nil {
		return model.Reservation{}, spanError(span, err)
	}

	available, err := s.repo.IsRoomAvailable(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return model.Reservation{}, spanError(span, err)
	}
	if !available {
		return model.Reservation{}, spanError(span, errs.ErrRoomUnavailable)
	}

	rsv := model.Reservation{
		ReservationID: s.newID(),
		RoomID:        roomID,
		UserID:        userID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Status:        model.StatusActive,
	}
	if err := s.repo.Save(ctx, rsv); err != nil {
		return model.Reservation{}, spanError(span, err)
	}
	span.SetAttributes(attribute.String("reservation_id", rsv.ReservationID))
	s.log.Info("reservation created",
		zap.String("reservation_id", rsv.ReservationID),
		zap.String("room_id", roomID),
		zap.String("user_id", userID))

	s.publish(ctx, kafka.ReservationCreated, rsv)
	return rsv, nil
}

// CancelReservation marks the reservation CANCELLED. Cancelling a reservation
// that is already CANCELLED succeeds without writing anything.
func (s *Service) CancelReservation(ctx context.Context, reservationID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "service.reservation.cancel",
		trace.WithAttributes(attribute.String("reservation_id", reservationID)))
	defer span.End()

	rsv, err := s.find(ctx, reservationID)
	if err != nil {
		return false, spanError(span, err)
	}
	if rsv.Status == model.StatusCancelled {
		s.log.Debug("reservation already cancelled", zap.String("reservation_id", reservationID))
		return true, nil
	}

	rsv.Status = model.StatusCancelled
	if err := s.repo.Save(ctx, rsv); err != nil {
		return false, spanError(span, err)
	}
	s.log.Info("reservation cancelled", zap.String("reservation_id", reservationID))

	s.publish(ctx, kafka.ReservationCancelled, rsv)
	return true, nil
}

// EditReservation is not supported.
func (s *Service) EditReservation(_ context.Context, reservationID string, _, _ time.Time) (model.Reservation, error) {
	return model.Reservation{}, fmt.Errorf("edit reservation %s: %w", reservationID, errs.ErrNotImplemented)
}

func (s *Service) GetReservation(ctx context.Context, reservationID string) (model.Reservation, error) {
	return s.find(ctx, reservationID)
}

func (s *Service) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "service.reservation.check_availability",
		trace.WithAttributes(attribute.String("room_id", roomID)))
	defer span.End()

	checkIn, checkOut = model.DateOf(checkIn), model.DateOf(checkOut)
	if err := validateDates(checkIn, checkOut); err != nil {
		return false, spanError(span, err)
	}
	available, err := s.repo.IsRoomAvailable(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, spanError(span, err)
	}
	span.SetAttributes(attribute.Bool("available", available))
	return available, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) find(ctx context.Context, reservationID string) (model.Reservation, error) {
	rsv, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, fmt.Errorf("%w with ID: %s", errs.ErrReservationNotFound, reservationID)
		}
		return model.Reservation{}, err
	}
	return rsv, nil
}

func validateDates(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return errs.ErrInvalidDates
	}
	return nil
}

// publish never fails the caller: the reservation is already stored.
func (s *Service) publish(ctx context.Context, eventType kafka.EventType, rsv model.Reservation) {
	event := kafka.ReservationEvent{
		EventType:     eventType,
		ReservationID: rsv.ReservationID,
		RoomID:        rsv.RoomID,
		UserID:        rsv.UserID,
		CheckIn:       rsv.CheckIn.Format(time.DateOnly),
		CheckOut:      rsv.CheckOut.Format(time.DateOnly),
		Status:        string(rsv.Status),
		Timestamp:     s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("publish event",
			zap.String("event_type", string(eventType)),
			zap.String("reservation_id", rsv.ReservationID),
			zap.Error(err))
	}
}
