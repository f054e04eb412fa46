package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/reservation-service/reservation/internal/errs"
	"github.com/Astemirdum/reservation-service/reservation/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=repository.go -destination=mocks/mock.go

// Repository stores reservations. It does no business validation apart from
// refusing to store two overlapping ACTIVE reservations of one room.
type Repository interface {
	// IsRoomAvailable reports whether no ACTIVE reservation of roomID overlaps [checkIn, checkOut).
	IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	// Save upserts rsv by ReservationID as given, status included.
	Save(ctx context.Context, rsv model.Reservation) error
	// FindByID returns errs.ErrNotFound for an unknown id.
	FindByID(ctx context.Context, reservationID string) (model.Reservation, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	reservationTableName = `reservations`
	datesCheckConstraint = `reservations_dates_check`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) IsRoomAvailable(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	q, args, err := qb.Select("count(*)").
		From(reservationTableName).
		Where(sq.Eq{"room_id": roomID}).
		Where(sq.Eq{"status": model.StatusActive}).
		Where(sq.Lt{"check_in": model.DateOf(checkOut)}).
		Where(sq.Gt{"check_out": model.DateOf(checkIn)}).
		ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := r.db.QueryRow(ctx, q, args...).Scan(&count); err != nil {
		r.log.Error("IsRoomAvailable", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return false, fmt.Errorf("check availability: %w", err)
	}
	return count == 0, nil
}

func (r *repository) Save(ctx context.Context, rsv model.Reservation) error {
	q, args, err := qb.Insert(reservationTableName).
		Columns("reservation_id", "room_id", "user_id", "check_in", "check_out", "status").
		Values(rsv.ReservationID, rsv.RoomID, rsv.UserID, model.DateOf(rsv.CheckIn), model.DateOf(rsv.CheckOut), rsv.Status).
		Suffix(`on conflict (reservation_id) do update set
	room_id = excluded.room_id,
	user_id = excluded.user_id,
	check_in = excluded.check_in,
	check_out = excluded.check_out,
	status = excluded.status,
	updated_at = now()`).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgerrcode.ExclusionViolation:
				return errs.ErrRoomUnavailable
			case pgErr.Code == pgerrcode.CheckViolation && pgErr.ConstraintName == datesCheckConstraint:
				return errs.ErrInvalidDates
			}
		}
		r.log.Error("Save", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, reservationID string) (model.Reservation, error) {
	q, args, err := qb.Select("reservation_id", "room_id", "user_id", "check_in", "check_out", "status").
		From(reservationTableName).
		Where(sq.Eq{"reservation_id": reservationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("find reservation: %w", err)
	}
	defer rows.Close()

	rsv, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Reservation])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, fmt.Errorf("pgx.CollectOneRow: %w", err)
	}
	rsv.CheckIn = model.DateOf(rsv.CheckIn)
	rsv.CheckOut = model.DateOf(rsv.CheckOut)
	return rsv, nil
}
