package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	"go.uber.org/zap"
)

// MemoryRepository keeps reservations in process memory.
type MemoryRepository struct {
	mu           sync.RWMutex
	reservations map[string]model.Reservation
	byRoom       map[string][]string // roomID -> reservation ids
	log          *zap.Logger
}

func NewMemoryRepository(log *zap.Logger) *MemoryRepository {
	return &MemoryRepository{
		reservations: make(map[string]model.Reservation),
		byRoom:       make(map[string][]string),
		log:          log.Named("memory_repo"),
	}
}

func (r *MemoryRepository) IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidate := model.Reservation{
		RoomID:   roomID,
		CheckIn:  model.DateOf(checkIn),
		CheckOut: model.DateOf(checkOut),
		Status:   model.StatusActive,
	}
	return !r.conflicts(candidate), nil
}

func (r *MemoryRepository) Save(ctx context.Context, rsv model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rsv.CheckIn = model.DateOf(rsv.CheckIn)
	rsv.CheckOut = model.DateOf(rsv.CheckOut)
	if !rsv.CheckOut.After(rsv.CheckIn) {
		return errs.ErrInvalidDates
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(rsv) {
		return errs.ErrRoomUnavailable
	}
	prev, exists := r.reservations[rsv.ReservationID]
	if !exists || prev.RoomID != rsv.RoomID {
		if exists {
			r.unindex(prev)
		}
		r.byRoom[rsv.RoomID] = append(r.byRoom[rsv.RoomID], rsv.ReservationID)
	}
	r.reservations[rsv.ReservationID] = rsv
	r.log.Debug("saved", zap.String("reservation_id", rsv.ReservationID), zap.String("status", string(rsv.Status)))
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, reservationID string) (model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return model.Reservation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rsv, ok := r.reservations[reservationID]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	return rsv, nil
}

// conflicts must be called with mu held.
func (r *MemoryRepository) conflicts(rsv model.Reservation) bool {
	for _, id := range r.byRoom[rsv.RoomID] {
		if id == rsv.ReservationID {
			continue
		}
		if r.reservations[id].Conflicts(rsv) {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) unindex(rsv model.Reservation) {
	ids := r.byRoom[rsv.RoomID]
	for i, id := range ids {
		if id == rsv.ReservationID {
			r.byRoom[rsv.RoomID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}
