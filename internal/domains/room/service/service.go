package service

import (
	"context"
	"fmt"
	"time"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/internal/domains/reservation/event"
	reservationModel "hotel/internal/domains/reservation/model"
	reservationRepo "hotel/internal/domains/reservation/repository"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/repository"
	roomTypeModel "hotel/internal/domains/roomtype/model"
	roomTypeRepo "hotel/internal/domains/roomtype/repository"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/metrics"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.RoomFilter) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	SetStatus(ctx context.Context, id string, req dto.SetStatusRequest) (dto.StatusChangeResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Room
	roomTypes roomTypeRepo.RoomType
	store     reservationRepo.Store
	events    event.Publisher
	cfg       *config.Config
	otel      otel.Otel
	now       func() time.Time
}

func New(repo repository.Room, roomTypes roomTypeRepo.RoomType, store reservationRepo.Store, events event.Publisher, cfg *config.Config, otel otel.Otel) Room {
	return &serviceImpl{
		repo:      repo,
		roomTypes: roomTypes,
		store:     store,
		events:    events,
		cfg:       cfg,
		otel:      otel,
		now:       timezone.Now,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	typeExists, err := s.roomTypes.Exist(ctx, shared.FilterByID(req.RoomTypeID, roomTypeModel.FieldID, roomTypeModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room type exists")

		return res, fmt.Errorf("failed to check if room type exists: %w", err)
	}

	if !typeExists {
		return res, failure.RoomTypeUnavailable("room type not found")
	}

	exist, err := s.repo.Exist(ctx, shared.FilterByID(req.ID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return res, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if exist {
		return res, failure.Conflict(fmt.Sprintf("room %s already exists", req.ID)) // nolint:wrapcheck
	}

	room := req.ToModel(user, s.now())

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Str("roomID", req.ID).Msg("failed to create room")

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.RoomFilter) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	group := filter.ToFilterGroup()

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	res.FromModel(room)

	return res, nil
}

// lookup resolves the room type first so writers can serialize with allocations
// for that type.
func (s *serviceImpl) lookup(ctx context.Context, id string) (model.Room, error) {
	var room model.Room

	err := s.store.View(ctx, func(ctx context.Context, tx reservationRepo.Tx) error {
		var err error

		room, err = tx.GetRoom(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get room: %w", err)
		}

		return nil
	})
	if err != nil {
		return room, err
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found")
	}

	return room, nil
}

// SetStatus moves a room to any status. Entering maintenance with active
// reservations needs req.Force, and then cancels all of them.
func (s *serviceImpl) SetStatus(ctx context.Context, id string, req dto.SetStatusRequest) (res dto.StatusChangeResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.SetStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !req.Status.IsValid() {
		return res, failure.BadRequestFromString(fmt.Sprintf("unknown room status %q", req.Status)) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.lookup(ctx, id)
	if err != nil {
		return res, err
	}

	var cancelled []cancellation

	err = s.store.Atomic(ctx, room.RoomTypeID, func(ctx context.Context, tx reservationRepo.Tx) error {
		cancelled = nil

		room, err = tx.GetRoomForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound("room not found")
		}

		now := s.now()

		if req.Status == model.StatusMaintenance {
			cancelled, err = cascade(ctx, tx, id, req.Force, now, user)
			if err != nil {
				return err
			}
		}

		if err := tx.UpdateRoomStatus(ctx, id, req.Status, now, user); err != nil {
			return fmt.Errorf("failed to update room status: %w", err)
		}

		room.Status = req.Status
		room.ModifiedAt = now
		room.ModifiedBy = user

		return nil
	})
	if err != nil {
		if !failure.Is(err) {
			log.Error().Err(err).Str("roomID", id).Str("status", string(req.Status)).Msg("failed to set room status")
		}

		return res, err
	}

	metrics.RoomStatusChanges.WithLabelValues(string(req.Status)).Inc()
	log.Info().Str("roomID", id).Str("status", string(req.Status)).Int("cancelled", len(cancelled)).Msg("room status changed")

	res.Room.FromModel(room)
	res.CancelledReservations = make([]string, len(cancelled))

	if len(cancelled) == 0 {
		return res, nil
	}

	events := make([]event.Event, len(cancelled))
	for i, stay := range cancelled {
		res.CancelledReservations[i] = stay.reservation.ID
		events[i] = event.FromReservation(event.TypeCancelled, stay.reservation, event.ReasonMaintenance, s.now())

		metrics.LifecycleTransitions.WithLabelValues(string(stay.from), string(reservationModel.StatusCancelled)).Inc()
	}

	s.publish(ctx, events...)

	return res, nil
}

// cancellation is a reservation as it stands after the cascade, with the status
// it was cancelled from.
type cancellation struct {
	reservation reservationModel.Reservation
	from        reservationModel.Status
}

// cascade cancels every active reservation on the room.
func cascade(ctx context.Context, tx reservationRepo.Tx, roomID string, force bool, now time.Time, user string) ([]cancellation, error) {
	active, err := tx.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room reservations: %w", err)
	}

	if len(active) == 0 {
		return nil, nil
	}

	if !force {
		ids := make([]string, len(active))
		for i, reservation := range active {
			ids[i] = reservation.ID
		}

		return nil, failure.ActiveReservationsConflict("room has active reservations; confirm to cancel them", ids)
	}

	res := make([]cancellation, len(active))

	for i, reservation := range active {
		if err := tx.UpdateReservationStatus(ctx, reservation.ID, reservationModel.StatusCancelled, now, user); err != nil {
			return nil, fmt.Errorf("failed to cancel reservation %s: %w", reservation.ID, err)
		}

		res[i].from = reservation.Status

		reservation.Status = reservationModel.StatusCancelled
		reservation.CancelledAt = &now
		reservation.ModifiedAt = now
		reservation.ModifiedBy = user
		res[i].reservation = reservation
	}

	return res, nil
}

// Delete refuses while any reservation, active or historical, references the room.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.Atomic(ctx, room.RoomTypeID, func(ctx context.Context, tx reservationRepo.Tx) error {
		ids, err := tx.ListReservationIDsByRoom(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list room reservations: %w", err)
		}

		if len(ids) > 0 {
			return failure.ActiveReservationsConflict("room is referenced by reservations", ids)
		}

		if err := tx.DeleteRoom(ctx, id); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}

		return nil
	})
	if err != nil {
		if !failure.Is(err) {
			log.Error().Err(err).Str("roomID", id).Msg("failed to delete room")
		}

		return err
	}

	log.Info().Str("roomID", id).Msg("room deleted")

	return nil
}

func (s *serviceImpl) publish(ctx context.Context, events ...event.Event) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.events.Publish(c, events...); err != nil {
			log.Error().Err(err).Msg("failed to publish room cascade events")
		}
	}()
}
