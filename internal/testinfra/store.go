// Package testinfra provides an in-memory inventory store with the same
// atomicity guarantees as the Postgres one, for service tests.
package testinfra

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	guestModel "hotel/internal/domains/guest/model"
	"hotel/internal/domains/reservation/inventory"
	"hotel/internal/domains/reservation/model"
	"hotel/internal/domains/reservation/repository"
	roomModel "hotel/internal/domains/room/model"
	roomTypeModel "hotel/internal/domains/roomtype/model"
	"hotel/shared/failure"
)

var (
	ErrInjected      = errors.New("injected failure")
	ErrDuplicateLink = errors.New("guest is already linked to the reservation")
)

type state struct {
	roomTypes    map[string]roomTypeModel.RoomType
	rooms        map[string]roomModel.Room
	guests       map[string]guestModel.Guest
	reservations map[string]model.Reservation
	links        map[string][]model.ReservationGuest
}

func (s state) clone() state {
	links := make(map[string][]model.ReservationGuest, len(s.links))
	for id, l := range s.links {
		links[id] = slices.Clone(l)
	}

	return state{
		roomTypes:    maps.Clone(s.roomTypes),
		rooms:        maps.Clone(s.rooms),
		guests:       maps.Clone(s.guests),
		reservations: maps.Clone(s.reservations),
		links:        links,
	}
}

// Store serializes every unit of work behind one lock and restores a snapshot
// when fn fails.
type Store struct {
	mu    sync.RWMutex
	state state

	failLinkGuests error
	atomicCalls    int
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		state: state{
			roomTypes:    map[string]roomTypeModel.RoomType{},
			rooms:        map[string]roomModel.Room{},
			guests:       map[string]guestModel.Guest{},
			reservations: map[string]model.Reservation{},
			links:        map[string][]model.ReservationGuest{},
		},
	}
}

func (s *Store) Atomic(ctx context.Context, _ string, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.atomicCalls++
	snapshot := s.state.clone()

	if err := fn(ctx, &memTx{store: s}); err != nil {
		s.state = snapshot

		return err
	}

	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, &memTx{store: s, readOnly: true})
}

// FailLinkGuests makes the next LinkGuests call return err.
func (s *Store) FailLinkGuests(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failLinkGuests = err
}

func (s *Store) AddRoomType(roomType roomTypeModel.RoomType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.roomTypes[roomType.ID] = roomType
}

func (s *Store) AddRoom(room roomModel.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.rooms[room.ID] = room
}

func (s *Store) AddReservation(reservation model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.reservations[reservation.ID] = reservation
}

func (s *Store) Room(id string) (roomModel.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.state.rooms[id]

	return room, ok
}

func (s *Store) Reservation(id string) (model.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.state.reservations[id]

	return reservation, ok
}

// Reservations returns every stored reservation ordered by check-in then id.
func (s *Store) Reservations() []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := slices.Collect(maps.Values(s.state.reservations))
	slices.SortFunc(res, func(a, b model.Reservation) int {
		if c := a.CheckInDate.Compare(b.CheckInDate); c != 0 {
			return c
		}

		if a.ID < b.ID {
			return -1
		}

		return 1
	})

	return res
}

func (s *Store) Guests() []guestModel.Guest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Collect(maps.Values(s.state.guests))
}

func (s *Store) Links(reservationID string) []model.ReservationGuest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.state.links[reservationID])
}

func (s *Store) AtomicCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.atomicCalls
}

type memTx struct {
	store    *Store
	readOnly bool
}

var errReadOnly = errors.New("write in read-only transaction")

func (t *memTx) writable() error {
	if t.readOnly {
		return errReadOnly
	}

	return nil
}

func (t *memTx) GetRoomType(_ context.Context, id string) (roomTypeModel.RoomType, error) {
	return t.store.state.roomTypes[id], nil
}

func (t *memTx) ListRoomsByType(_ context.Context, roomTypeID string) ([]roomModel.Room, error) {
	var res []roomModel.Room

	for _, room := range t.store.state.rooms {
		if room.RoomTypeID == roomTypeID {
			res = append(res, room)
		}
	}

	return res, nil
}

func (t *memTx) ListActiveIntervals(_ context.Context, roomTypeID string, checkIn, checkOut time.Time) ([]model.Interval, error) {
	var res []model.Interval

	for _, reservation := range t.store.state.reservations {
		room := t.store.state.rooms[reservation.RoomID]
		if room.RoomTypeID != roomTypeID || !reservation.Status.IsActive() {
			continue
		}

		if inventory.Overlaps(reservation.CheckInDate, reservation.CheckOutDate, checkIn, checkOut) {
			res = append(res, reservation.Interval())
		}
	}

	return res, nil
}

func (t *memTx) UpsertGuest(_ context.Context, guest guestModel.Guest) (string, error) {
	if err := t.writable(); err != nil {
		return "", err
	}

	for _, existing := range t.store.state.guests {
		if existing.DNI == guest.DNI {
			return existing.ID, nil
		}
	}

	t.store.state.guests[guest.ID] = guest

	return guest.ID, nil
}

// InsertReservation enforces the same no-overlap rule as the exclusion
// constraint and the unique payment reference index.
func (t *memTx) InsertReservation(_ context.Context, reservation model.Reservation) error {
	if err := t.writable(); err != nil {
		return err
	}

	for _, existing := range t.store.state.reservations {
		if reservation.PaymentReference != "" && existing.PaymentReference == reservation.PaymentReference {
			return failure.PaymentReferenceUsed(reservation.PaymentReference)
		}

		if existing.RoomID != reservation.RoomID || !existing.Status.IsActive() {
			continue
		}

		if inventory.Overlaps(existing.CheckInDate, existing.CheckOutDate, reservation.CheckInDate, reservation.CheckOutDate) {
			return failure.NoAvailability("no room available for the requested dates")
		}
	}

	t.store.state.reservations[reservation.ID] = reservation

	return nil
}

func (t *memTx) LinkGuests(_ context.Context, reservationID string, guestIDs []string) error {
	if err := t.writable(); err != nil {
		return err
	}

	if err := t.store.failLinkGuests; err != nil {
		t.store.failLinkGuests = nil

		return err
	}

	seen := map[string]bool{}
	for _, link := range t.store.state.links[reservationID] {
		seen[link.GuestID] = true
	}

	for _, guestID := range guestIDs {
		if seen[guestID] {
			return ErrDuplicateLink
		}

		seen[guestID] = true
	}

	for i, guestID := range guestIDs {
		t.store.state.links[reservationID] = append(t.store.state.links[reservationID], model.ReservationGuest{
			ReservationID: reservationID,
			GuestID:       guestID,
			Position:      i,
		})
	}

	return nil
}

func (t *memTx) GetReservation(_ context.Context, id string) (model.Reservation, error) {
	return t.store.state.reservations[id], nil
}

func (t *memTx) GetReservationForUpdate(ctx context.Context, id string) (model.Reservation, error) {
	return t.GetReservation(ctx, id)
}

func (t *memTx) ListGuests(_ context.Context, reservationID string) ([]guestModel.Guest, error) {
	links := t.store.state.links[reservationID]
	res := make([]guestModel.Guest, 0, len(links))

	for _, link := range links {
		res = append(res, t.store.state.guests[link.GuestID])
	}

	return res, nil
}

func (t *memTx) UpdateReservationStatus(_ context.Context, id string, status model.Status, at time.Time, user string) error {
	if err := t.writable(); err != nil {
		return err
	}

	reservation := t.store.state.reservations[id]
	reservation.Status = status
	reservation.ModifiedAt = at
	reservation.ModifiedBy = user

	if status == model.StatusCancelled {
		cancelledAt := at
		reservation.CancelledAt = &cancelledAt
	}

	t.store.state.reservations[id] = reservation

	return nil
}

func (t *memTx) ListActiveByRoom(_ context.Context, roomID string) ([]model.Reservation, error) {
	var res []model.Reservation

	for _, reservation := range t.store.state.reservations {
		if reservation.RoomID == roomID && reservation.Status.IsActive() {
			res = append(res, reservation)
		}
	}

	slices.SortFunc(res, func(a, b model.Reservation) int {
		return a.CheckInDate.Compare(b.CheckInDate)
	})

	return res, nil
}

func (t *memTx) ListReservationIDsByRoom(_ context.Context, roomID string) ([]string, error) {
	var res []string

	for _, reservation := range t.store.state.reservations {
		if reservation.RoomID == roomID {
			res = append(res, reservation.ID)
		}
	}

	slices.Sort(res)

	return res, nil
}

func (t *memTx) ListStalePending(_ context.Context, createdBefore time.Time, limit int) ([]string, error) {
	var res []string

	for _, reservation := range t.store.state.reservations {
		if reservation.Status == model.StatusPending && reservation.CreatedAt.Before(createdBefore) {
			res = append(res, reservation.ID)
		}
	}

	slices.Sort(res)

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}

	return res, nil
}

func (t *memTx) GetRoom(_ context.Context, id string) (roomModel.Room, error) {
	return t.store.state.rooms[id], nil
}

func (t *memTx) GetRoomForUpdate(ctx context.Context, id string) (roomModel.Room, error) {
	return t.GetRoom(ctx, id)
}

func (t *memTx) UpdateRoomStatus(_ context.Context, id string, status roomModel.Status, at time.Time, user string) error {
	if err := t.writable(); err != nil {
		return err
	}

	room := t.store.state.rooms[id]
	room.Status = status
	room.ModifiedAt = at
	room.ModifiedBy = user
	t.store.state.rooms[id] = room

	return nil
}

func (t *memTx) DeleteRoom(_ context.Context, id string) error {
	if err := t.writable(); err != nil {
		return err
	}

	delete(t.store.state.rooms, id)

	return nil
}
