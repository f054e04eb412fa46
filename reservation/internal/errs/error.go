package errs

import (
	"errors"
)

// ErrNotFound is returned by repositories for a missing record.
var ErrNotFound = errors.New("not found")

// Domain errors; the caller can fix them by changing the input.
var (
	ErrInvalidDates        = errors.New("check-out date must be after check-in date")
	ErrRoomUnavailable     = errors.New("room is not available for the selected dates")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNotImplemented      = errors.New("not implemented")
)

// IsDomain tells domain errors apart from infrastructure failures.
func IsDomain(err error) bool {
	return errors.Is(err, ErrInvalidDates) ||
		errors.Is(err, ErrRoomUnavailable) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrNotImplemented)
}
