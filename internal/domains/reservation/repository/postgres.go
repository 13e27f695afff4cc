package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	guestModel "hotel/internal/domains/guest/model"
	guestRepo "hotel/internal/domains/guest/repository"
	"hotel/internal/domains/reservation/model"
	roomModel "hotel/internal/domains/room/model"
	roomRepo "hotel/internal/domains/room/repository"
	roomTypeModel "hotel/internal/domains/roomtype/model"
	"hotel/shared"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/shared/logger"
	"hotel/shared/metrics"
	gRepo "hotel/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	retryBaseDelay = 20 * time.Millisecond

	paymentReferenceIndex = "idx_reservations_payment_reference"

	lockQuery = `SELECT pg_advisory_xact_lock(hashtext($1))`

	roomTypeColumns    = `id, name, description, base_price, max_guests, includes_breakfast, includes_spa, is_active, created_at, modified_at, created_by, modified_by`
	roomColumns        = `id, floor, room_type_id, status, created_at, modified_at, created_by, modified_by`
	reservationColumns = `id, room_id, room_type_id, user_id, check_in_date, check_out_date, status, total_price, deposit_paid,
includes_breakfast, includes_spa, payment_reference, cancelled_at, created_at, modified_at, created_by, modified_by`

	getRoomTypeQuery     = `SELECT ` + roomTypeColumns + ` FROM room_types WHERE id = $1`
	listRoomsByTypeQuery = `SELECT ` + roomColumns + ` FROM rooms WHERE room_type_id = $1`
	getRoomQuery         = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	getRoomForUpdate     = getRoomQuery + ` FOR UPDATE`

	listActiveIntervalsQuery = `SELECT r.id, r.room_id, r.check_in_date, r.check_out_date
FROM reservations r
JOIN rooms ro ON ro.id = r.room_id
WHERE ro.room_type_id = $1
  AND r.status IN ('pending', 'confirmed')
  AND r.check_in_date < $3
  AND $2 < r.check_out_date`

	getReservationQuery     = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	getReservationForUpdate = getReservationQuery + ` FOR UPDATE`
	listActiveByRoomQuery   = `SELECT ` + reservationColumns + ` FROM reservations WHERE room_id = $1 AND status IN ('pending', 'confirmed') ORDER BY check_in_date FOR UPDATE`
	listIDsByRoomQuery      = `SELECT id FROM reservations WHERE room_id = $1 ORDER BY created_at`
	listStalePendingQuery   = `SELECT id FROM reservations WHERE status = 'pending' AND created_at < $1 ORDER BY created_at LIMIT $2`
)

type storeImpl struct {
	db           *postgres.Connection
	otel         otel.Otel
	maxRetries   int
	reservations gRepo.Repository[model.Reservation]
	links        gRepo.Repository[model.ReservationGuest]
	rooms        roomRepo.Room
	guests       guestRepo.Guest
}

func NewStore(db *postgres.Connection, cfg *config.Config, otel otel.Otel, rooms roomRepo.Room, guests guestRepo.Guest) Store {
	return &storeImpl{
		db:           db,
		otel:         otel,
		maxRetries:   max(cfg.Booking.MaxTxRetries, 0),
		reservations: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		links:        gRepo.NewRepository[model.ReservationGuest](model.GuestEntity, model.GuestTableName, model.FieldReservationID, db, otel),
		rooms:        rooms,
		guests:       guests,
	}
}

// Atomic runs fn in one transaction. With a lockKey the transaction first takes
// an advisory lock on it and runs at READ COMMITTED, so every read after the
// lock sees what the previous holder committed. Without one it runs
// SERIALIZABLE. Serialization failures, deadlocks and exclusion violations are
// retried up to maxRetries times, re-running fn from scratch each time.
func (s *storeImpl) Atomic(ctx context.Context, lockKey string, fn func(ctx context.Context, tx Tx) error) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".store.Atomic")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	for attempt := 0; ; attempt++ {
		err = s.atomic(ctx, lockKey, fn)

		code, retryable := retryableCode(err)
		if !retryable {
			return err
		}

		if attempt >= s.maxRetries {
			return exhausted(code, attempt+1, err)
		}

		metrics.TxRetries.WithLabelValues(code).Inc()
		log.Warn().Err(err).Str("sqlstate", code).Int("attempt", attempt+1).Msg("retrying transaction")

		select {
		case <-ctx.Done():
			return fmt.Errorf("transaction retry aborted: %w", ctx.Err())
		case <-time.After(retryBaseDelay * time.Duration(attempt+1)):
		}
	}
}

// exhausted is an internal error whatever the code: availability is only ever
// decided by fn, never by a lost race.
func exhausted(code string, attempts int, err error) error {
	return fmt.Errorf("transaction retries exhausted after %d attempts (sqlstate %s): %w", attempts, code, err)
}

// txOptions picks the isolation level. A SERIALIZABLE or REPEATABLE READ
// snapshot is taken at the first statement, which would be the lock wait itself.
func txOptions(lockKey string) *sql.TxOptions {
	if lockKey == constant.Empty {
		return &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	return &sql.TxOptions{Isolation: sql.LevelReadCommitted}
}

func (s *storeImpl) atomic(ctx context.Context, lockKey string, fn func(ctx context.Context, tx Tx) error) error {
	sqltx, err := s.db.Write.BeginTxx(ctx, txOptions(lockKey))
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if rbErr := sqltx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if lockKey != constant.Empty {
		if _, err := sqltx.ExecContext(ctx, lockQuery, lockKey); err != nil {
			return fmt.Errorf("failed to acquire inventory lock: %w", err)
		}
	}

	if err := fn(ctx, &txImpl{store: s, tx: sqltx}); err != nil {
		return err
	}

	if err := sqltx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *storeImpl) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".store.View")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	sqltx, err := s.db.Read.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer sqltx.Rollback() //nolint:errcheck

	return fn(ctx, &txImpl{store: s, tx: sqltx})
}

func retryableCode(err error) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}

	code := string(pqErr.Code)

	switch code {
	case constant.PqErrorCodeSerializationFailure, constant.PqErrorCodeDeadlockDetected, constant.PqErrorCodeExclusionViolation:
		return code, true
	default:
		return code, false
	}
}

func violates(err error, code, constraint string) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == code && pqErr.Constraint == constraint
}

type txImpl struct {
	store *storeImpl
	tx    *sqlx.Tx
}

func (t *txImpl) scope(ctx context.Context, name string) (context.Context, otel.Scope) {
	return t.store.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".store."+name)
}

// get scans one row into dest and leaves it untouched when there is none.
func (t *txImpl) get(ctx context.Context, name string, dest any, query string, args ...any) error {
	ctx, scope := t.scope(ctx, name)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err := t.tx.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to %s: %w", name, err)
	}

	return nil
}

func (t *txImpl) selectAll(ctx context.Context, name string, dest any, query string, args ...any) error {
	ctx, scope := t.scope(ctx, name)
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := t.tx.SelectContext(ctx, dest, query, args...); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return fmt.Errorf("failed to %s: %w", name, err)
	}

	return nil
}

func (t *txImpl) GetRoomType(ctx context.Context, id string) (res roomTypeModel.RoomType, err error) {
	err = t.get(ctx, "GetRoomType", &res, getRoomTypeQuery, id)

	return res, err
}

func (t *txImpl) ListRoomsByType(ctx context.Context, roomTypeID string) (res []roomModel.Room, err error) {
	err = t.selectAll(ctx, "ListRoomsByType", &res, listRoomsByTypeQuery, roomTypeID)

	return res, err
}

func (t *txImpl) ListActiveIntervals(ctx context.Context, roomTypeID string, checkIn, checkOut time.Time) (res []model.Interval, err error) {
	err = t.selectAll(ctx, "ListActiveIntervals", &res, listActiveIntervalsQuery, roomTypeID, checkIn, checkOut)

	return res, err
}

func (t *txImpl) UpsertGuest(ctx context.Context, guest guestModel.Guest) (string, error) {
	return t.store.guests.UpsertTx(ctx, t.tx, guest) //nolint:wrapcheck
}

func (t *txImpl) InsertReservation(ctx context.Context, reservation model.Reservation) error {
	err := t.store.reservations.InsertTx(ctx, t.tx, reservation)
	if violates(err, constant.PqErrorCodeUniqueViolation, paymentReferenceIndex) {
		return failure.PaymentReferenceUsed(reservation.PaymentReference)
	}

	return err //nolint:wrapcheck
}

func (t *txImpl) LinkGuests(ctx context.Context, reservationID string, guestIDs []string) error {
	links := make([]model.ReservationGuest, len(guestIDs))
	for i, guestID := range guestIDs {
		links[i] = model.ReservationGuest{ReservationID: reservationID, GuestID: guestID, Position: i}
	}

	return t.store.links.InsertBulkTx(ctx, t.tx, links) //nolint:wrapcheck
}

func (t *txImpl) GetReservation(ctx context.Context, id string) (res model.Reservation, err error) {
	err = t.get(ctx, "GetReservation", &res, getReservationQuery, id)

	return res, err
}

func (t *txImpl) GetReservationForUpdate(ctx context.Context, id string) (res model.Reservation, err error) {
	err = t.get(ctx, "GetReservationForUpdate", &res, getReservationForUpdate, id)

	return res, err
}

func (t *txImpl) ListGuests(ctx context.Context, reservationID string) ([]guestModel.Guest, error) {
	return t.store.guests.ListByReservation(ctx, t.tx, reservationID) //nolint:wrapcheck
}

func (t *txImpl) UpdateReservationStatus(ctx context.Context, id string, status model.Status, at time.Time, user string) error {
	fields := map[string]any{
		model.FieldStatus:        status,
		constant.FieldModifiedAt: at,
		constant.FieldModifiedBy: user,
	}

	if status == model.StatusCancelled {
		fields[model.FieldCancelledAt] = at
	}

	return t.store.reservations.UpdateTx(ctx, t.tx, fields, shared.FilterByID(id, model.FieldID, model.TableName)) //nolint:wrapcheck
}

func (t *txImpl) ListActiveByRoom(ctx context.Context, roomID string) (res []model.Reservation, err error) {
	err = t.selectAll(ctx, "ListActiveByRoom", &res, listActiveByRoomQuery, roomID)

	return res, err
}

func (t *txImpl) ListReservationIDsByRoom(ctx context.Context, roomID string) (res []string, err error) {
	err = t.selectAll(ctx, "ListReservationIDsByRoom", &res, listIDsByRoomQuery, roomID)

	return res, err
}

func (t *txImpl) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) (res []string, err error) {
	err = t.selectAll(ctx, "ListStalePending", &res, listStalePendingQuery, createdBefore, limit)

	return res, err
}

func (t *txImpl) GetRoom(ctx context.Context, id string) (res roomModel.Room, err error) {
	err = t.get(ctx, "GetRoom", &res, getRoomQuery, id)

	return res, err
}

func (t *txImpl) GetRoomForUpdate(ctx context.Context, id string) (res roomModel.Room, err error) {
	err = t.get(ctx, "GetRoomForUpdate", &res, getRoomForUpdate, id)

	return res, err
}

func (t *txImpl) UpdateRoomStatus(ctx context.Context, id string, status roomModel.Status, at time.Time, user string) error {
	fields := map[string]any{
		roomModel.FieldStatus:    status,
		constant.FieldModifiedAt: at,
		constant.FieldModifiedBy: user,
	}

	return t.store.rooms.UpdateTx(ctx, t.tx, fields, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName)) //nolint:wrapcheck
}

func (t *txImpl) DeleteRoom(ctx context.Context, id string) error {
	return t.store.rooms.DeleteTx(ctx, t.tx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName)) //nolint:wrapcheck
}
