package model

import (
	"slices"
	"time"

	"hotel/shared/model"
)

const (
	TableName      = "reservations"
	EntityName     = "reservation"
	GuestTableName = "reservation_guests"
	GuestEntity    = "reservation_guest"

	FieldID               = "id"
	FieldRoomID           = "room_id"
	FieldRoomTypeID       = "room_type_id"
	FieldUserID           = "user_id"
	FieldCheckInDate      = "check_in_date"
	FieldCheckOutDate     = "check_out_date"
	FieldStatus           = "status"
	FieldTotalPrice       = "total_price"
	FieldCancelledAt      = "cancelled_at"
	FieldReservationID    = "reservation_id"
	FieldPosition         = "position"
	FieldPaymentReference = "payment_reference"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFinalized Status = "finalized"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusFinalized, StatusCancelled},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFinalized, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether next is reachable from s in one step.
// Nothing ever leads back to pending.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// IsTerminal reports whether s is absorbing.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsActive reports whether a reservation in s holds its room for its interval.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses returns the statuses that count towards booking occupancy.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed}
}

type Reservation struct {
	ID                string     `db:"id"`
	RoomID            string     `db:"room_id"`
	RoomTypeID        string     `db:"room_type_id"`
	UserID            string     `db:"user_id"`
	CheckInDate       time.Time  `db:"check_in_date"`
	CheckOutDate      time.Time  `db:"check_out_date"`
	Status            Status     `db:"status"`
	TotalPrice        float64    `db:"total_price"`
	DepositPaid       float64    `db:"deposit_paid"`
	IncludesBreakfast bool       `db:"includes_breakfast"`
	IncludesSpa       bool       `db:"includes_spa"`
	PaymentReference  string     `db:"payment_reference"`
	CancelledAt       *time.Time `db:"cancelled_at"`
	model.Metadata
}

// Interval returns the half-open stay [CheckInDate, CheckOutDate) on RoomID.
func (r Reservation) Interval() Interval {
	return Interval{
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		CheckIn:       r.CheckInDate,
		CheckOut:      r.CheckOutDate,
	}
}

// Interval is the booking footprint of one active reservation.
type Interval struct {
	ReservationID string    `db:"id"`
	RoomID        string    `db:"room_id"`
	CheckIn       time.Time `db:"check_in_date"`
	CheckOut      time.Time `db:"check_out_date"`
}

// Covers reports whether day falls inside the half-open interval.
func (i Interval) Covers(day time.Time) bool {
	return !day.Before(i.CheckIn) && day.Before(i.CheckOut)
}

// ReservationGuest links a guest to a reservation; position 0 is the titular guest.
type ReservationGuest struct {
	ReservationID string `db:"reservation_id"`
	GuestID       string `db:"guest_id"`
	Position      int    `db:"position"`
}
