package model

import (
	"time"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

type Reservation struct {
	ReservationID string    `json:"reservationId" db:"reservation_id"`
	RoomID        string    `json:"roomId" db:"room_id"`
	UserID        string    `json:"userId" db:"user_id"`
	CheckIn       time.Time `json:"checkIn" db:"check_in"`
	CheckOut      time.Time `json:"checkOut" db:"check_out"`
	Status        Status    `json:"status" db:"status"`
}

func (r Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// Conflicts reports whether both reservations are ACTIVE, share a room and overlap.
func (r Reservation) Conflicts(other Reservation) bool {
	return r.IsActive() && other.IsActive() &&
		r.RoomID == other.RoomID &&
		Overlaps(r.CheckIn, r.CheckOut, other.CheckIn, other.CheckOut)
}

// Overlaps treats both ranges as [in, out): a stay may start on the
// check-out day of another one.
func Overlaps(existingIn, existingOut, checkIn, checkOut time.Time) bool {
	return existingIn.Before(checkOut) && existingOut.After(checkIn)
}

// DateOf drops the clock part of t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

type CreateReservationRequest struct {
	UserID   string `json:"userId" validate:"required"`
	RoomID   string `json:"roomId" validate:"required"`
	CheckIn  string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" validate:"required,datetime=2006-01-02"`
}

type EditReservationRequest struct {
	CheckIn  string `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"checkOut" validate:"required,datetime=2006-01-02"`
}

type ReservationResponse struct {
	ReservationID string `json:"reservationId"`
	RoomID        string `json:"roomId"`
	UserID        string `json:"userId"`
	CheckIn       string `json:"checkIn"`
	CheckOut      string `json:"checkOut"`
	Status        Status `json:"status"`
}

func (r Reservation) Response() ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ReservationID,
		RoomID:        r.RoomID,
		UserID:        r.UserID,
		CheckIn:       r.CheckIn.Format(time.DateOnly),
		CheckOut:      r.CheckOut.Format(time.DateOnly),
		Status:        r.Status,
	}
}

type CancelResponse struct {
	ReservationID string `json:"reservationId"`
	Cancelled     bool   `json:"cancelled"`
}

type AvailabilityResponse struct {
	RoomID    string `json:"roomId"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Available bool   `json:"available"`
}
