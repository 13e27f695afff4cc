package repository

import (
	"context"
	"time"

	guestModel "hotel/internal/domains/guest/model"
	"hotel/internal/domains/reservation/model"
	roomModel "hotel/internal/domains/room/model"
	roomTypeModel "hotel/internal/domains/roomtype/model"
)

// Tx is the set of reads and writes that must observe one consistent view of
// the inventory. Lookups of a missing row return the zero value and no error.
type Tx interface {
	GetRoomType(ctx context.Context, id string) (roomTypeModel.RoomType, error)
	ListRoomsByType(ctx context.Context, roomTypeID string) ([]roomModel.Room, error)
	ListActiveIntervals(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) ([]model.Interval, error)

	UpsertGuest(ctx context.Context, guest guestModel.Guest) (string, error)
	InsertReservation(ctx context.Context, reservation model.Reservation) error
	LinkGuests(ctx context.Context, reservationID string, guestIDs []string) error

	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id string) (model.Reservation, error)
	ListGuests(ctx context.Context, reservationID string) ([]guestModel.Guest, error)
	UpdateReservationStatus(ctx context.Context, id string, status model.Status, at time.Time, user string) error
	ListActiveByRoom(ctx context.Context, roomID string) ([]model.Reservation, error)
	ListReservationIDsByRoom(ctx context.Context, roomID string) ([]string, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]string, error)

	GetRoom(ctx context.Context, id string) (roomModel.Room, error)
	GetRoomForUpdate(ctx context.Context, id string) (roomModel.Room, error)
	UpdateRoomStatus(ctx context.Context, id string, status roomModel.Status, at time.Time, user string) error
	DeleteRoom(ctx context.Context, id string) error
}

// Store runs units of work against the inventory. Every writer goes through
// Atomic; an error returned by fn rolls back everything fn did.
type Store interface {
	// Atomic serializes fn with every other Atomic call sharing lockKey.
	// An empty lockKey relies on row locks alone.
	Atomic(ctx context.Context, lockKey string, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
