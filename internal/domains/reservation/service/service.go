package service

import (
	"context"
	"fmt"
	"time"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/infras/payment"
	guestModel "hotel/internal/domains/guest/model"
	"hotel/internal/domains/reservation/event"
	"hotel/internal/domains/reservation/inventory"
	"hotel/internal/domains/reservation/model"
	"hotel/internal/domains/reservation/model/dto"
	"hotel/internal/domains/reservation/pricing"
	"hotel/internal/domains/reservation/repository"
	roomModel "hotel/internal/domains/room/model"
	roomTypeModel "hotel/internal/domains/roomtype/model"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	"hotel/shared/metrics"
	"hotel/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	sweeperUser     = "system:sweeper"
	staleBatchLimit = 100
)

type Reservation interface {
	Availability(ctx context.Context, roomTypeID string, req dto.StayRequest) (dto.AvailabilityResponse, error)
	Quote(ctx context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error)
	Create(ctx context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ReservationFilter) (dto.GetReservationsResponse, error)
	CheckIn(ctx context.Context, id string) (dto.ReservationResponse, error)
	CheckOut(ctx context.Context, id string) (dto.ReservationResponse, error)
	Cancel(ctx context.Context, id string) (dto.ReservationResponse, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type serviceImpl struct {
	store   repository.Store
	repo    repository.Reservation
	payment payment.Gateway
	events  event.Publisher
	rates   pricing.Rates
	otel    otel.Otel
	now     func() time.Time
}

func New(store repository.Store, repo repository.Reservation, gateway payment.Gateway, events event.Publisher, cfg *config.Config, otel otel.Otel) Reservation {
	return NewWithClock(store, repo, gateway, events, cfg, otel, timezone.Now)
}

// NewWithClock lets callers decide what "today" is.
func NewWithClock(store repository.Store, repo repository.Reservation, gateway payment.Gateway, events event.Publisher, cfg *config.Config, otel otel.Otel, now func() time.Time) Reservation {
	return &serviceImpl{
		store:   store,
		repo:    repo,
		payment: gateway,
		events:  events,
		rates:   pricing.RatesFromConfig(cfg),
		otel:    otel,
		now:     now,
	}
}

func (s *serviceImpl) today() time.Time {
	return timezone.DateOf(timezone.In(s.now()))
}

// stay parses and checks the requested dates: check-out after check-in, check-in not in the past.
func (s *serviceImpl) stay(req dto.StayRequest) (checkIn, checkOut time.Time, nights int, err error) {
	checkIn, checkOut, err = req.Dates()
	if err != nil {
		return checkIn, checkOut, 0, failure.InvalidDateRange("dates must use the YYYY-MM-DD format")
	}

	nights, err = pricing.Nights(checkIn, checkOut)
	if err != nil {
		return checkIn, checkOut, 0, err
	}

	if checkIn.Before(s.today()) {
		return checkIn, checkOut, 0, failure.InvalidDateRange("check-in date is in the past")
	}

	return checkIn, checkOut, nights, nil
}

func bookableRoomType(ctx context.Context, tx repository.Tx, id string) (roomTypeModel.RoomType, error) {
	if _, err := uuid.Parse(id); err != nil {
		return roomTypeModel.RoomType{}, failure.RoomTypeUnavailable("room type not found")
	}

	roomType, err := tx.GetRoomType(ctx, id)
	if err != nil {
		return roomType, fmt.Errorf("failed to get room type: %w", err)
	}

	if roomType.ID == constant.Empty {
		return roomType, failure.RoomTypeUnavailable("room type not found")
	}

	if !roomType.Bookable() {
		return roomType, failure.RoomTypeUnavailable("room type is not accepting bookings")
	}

	return roomType, nil
}

// roomPool loads the rooms of a type and the active intervals overlapping the stay.
func roomPool(ctx context.Context, tx repository.Tx, roomTypeID string, checkIn, checkOut time.Time) ([]roomModel.Room, []model.Interval, error) {
	rooms, err := tx.ListRoomsByType(ctx, roomTypeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	booked, err := tx.ListActiveIntervals(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list booked intervals: %w", err)
	}

	return rooms, booked, nil
}

func (s *serviceImpl) freeRooms(ctx context.Context, tx repository.Tx, roomTypeID string, checkIn, checkOut time.Time) ([]string, error) {
	rooms, booked, err := roomPool(ctx, tx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return inventory.FreeRooms(rooms, booked, checkIn, checkOut, s.today()), nil
}

func (s *serviceImpl) Availability(ctx context.Context, roomTypeID string, req dto.StayRequest) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Availability")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, nights, err := s.stay(req)
	if err != nil {
		return res, err
	}

	var free []string

	err = s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := bookableRoomType(ctx, tx, roomTypeID); err != nil {
			return err
		}

		free, err = s.freeRooms(ctx, tx, roomTypeID, checkIn, checkOut)

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("roomTypeID", roomTypeID).Msg("failed to compute availability")

		return res, err
	}

	return dto.AvailabilityResponse{
		RoomTypeID: roomTypeID,
		CheckIn:    dto.FormatDay(checkIn),
		CheckOut:   dto.FormatDay(checkOut),
		Nights:     nights,
		Available:  len(free),
		RoomIDs:    free,
	}, nil
}

func (s *serviceImpl) Quote(ctx context.Context, req dto.QuoteRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	checkIn, checkOut, nights, err := s.stay(req.StayRequest)
	if err != nil {
		return res, err
	}

	var (
		roomType roomTypeModel.RoomType
		free     []string
	)

	err = s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		roomType, err = bookableRoomType(ctx, tx, req.RoomTypeID)
		if err != nil {
			return err
		}

		free, err = s.freeRooms(ctx, tx, roomType.ID, checkIn, checkOut)

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("roomTypeID", req.RoomTypeID).Msg("failed to quote stay")

		return res, err
	}

	if !roomType.AcceptsGuests(req.Guests) {
		return res, failure.CapacityExceeded(req.Guests, roomType.MaxGuests)
	}

	res.FromBreakdown(s.rates.Price(pricing.Stay{
		BasePrice:             roomType.BasePrice,
		Nights:                nights,
		Guests:                req.Guests,
		IncludeBreakfast:      req.IncludeBreakfast,
		IncludeSpa:            req.IncludeSpa,
		TypeIncludesBreakfast: roomType.IncludesBreakfast,
		TypeIncludesSpa:       roomType.IncludesSpa,
	}))

	res.RoomTypeID = roomType.ID
	res.CheckIn = dto.FormatDay(checkIn)
	res.CheckOut = dto.FormatDay(checkOut)
	res.Guests = req.Guests
	res.Available = len(free) > 0

	return res, nil
}

// Create verifies the payment, then allocates a room and stores the reservation
// in one transaction serialized per room type.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateReservationRequest) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start := time.Now()
	defer func() {
		metrics.AllocationDuration.Observe(time.Since(start).Seconds())

		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = string(failure.GetKind(err))
		}

		metrics.AllocationAttempts.WithLabelValues(outcome).Inc()
	}()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	checkIn, checkOut, nights, err := s.stay(req.StayRequest)
	if err != nil {
		return res, err
	}

	if dni, repeated := req.RepeatedDNI(); repeated {
		return res, failure.BadRequestFromString(fmt.Sprintf("guest dni %s is listed more than once", dni)) // nolint:wrapcheck
	}

	captured, err := s.payment.Captured(ctx, req.PaymentReference)
	if err != nil {
		log.Error().Err(err).Str("reference", req.PaymentReference).Msg("failed to verify payment")

		return res, fmt.Errorf("failed to verify payment: %w", err)
	}

	if !captured {
		return res, failure.PaymentNotCaptured(req.PaymentReference)
	}

	var (
		reservation model.Reservation
		guests      []guestModel.Guest
		id          = uuid.NewString()
	)

	err = s.store.Atomic(ctx, req.RoomTypeID, func(ctx context.Context, tx repository.Tx) error {
		reservation, guests, err = s.allocate(ctx, tx, allocation{
			id: id, user: user, req: req, checkIn: checkIn, checkOut: checkOut, nights: nights,
		})

		return err
	})
	if err != nil {
		if failure.IsKind(err, failure.KindNoAvailability) {
			s.publish(ctx, event.Event{
				Type:             event.TypeRefundRequired,
				RoomTypeID:       req.RoomTypeID,
				UserID:           user,
				CheckIn:          dto.FormatDay(checkIn),
				CheckOut:         dto.FormatDay(checkOut),
				PaymentReference: req.PaymentReference,
				Reason:           event.ReasonNoAvailable,
				OccurredAt:       s.now(),
			})

			return res, failure.NoAvailability("no room available for the requested dates").
				WithDetail(failure.DetailRefundRequired, true).
				WithDetail(failure.DetailPaymentRef, req.PaymentReference)
		}

		if !failure.Is(err) {
			log.Error().Err(err).Str("roomTypeID", req.RoomTypeID).Msg("failed to create reservation")
		}

		return res, err
	}

	log.Info().Str("reservationID", reservation.ID).Str("roomID", reservation.RoomID).Msg("reservation created")

	s.publish(ctx, event.FromReservation(event.TypeCreated, reservation, constant.Empty, s.now()))

	res.FromModel(reservation, guests)

	return res, nil
}

type allocation struct {
	id       string
	user     string
	req      dto.CreateReservationRequest
	checkIn  time.Time
	checkOut time.Time
	nights   int
}

func (s *serviceImpl) allocate(ctx context.Context, tx repository.Tx, in allocation) (model.Reservation, []guestModel.Guest, error) {
	roomType, err := bookableRoomType(ctx, tx, in.req.RoomTypeID)
	if err != nil {
		return model.Reservation{}, nil, err
	}

	if !roomType.AcceptsGuests(len(in.req.Guests)) {
		return model.Reservation{}, nil, failure.CapacityExceeded(len(in.req.Guests), roomType.MaxGuests)
	}

	rooms, booked, err := roomPool(ctx, tx, roomType.ID, in.checkIn, in.checkOut)
	if err != nil {
		return model.Reservation{}, nil, err
	}

	roomID, ok := inventory.PickRoom(rooms, booked, in.checkIn, in.checkOut, s.today())
	if !ok {
		return model.Reservation{}, nil, failure.NoAvailability("no room available for the requested dates")
	}

	quote := s.rates.Price(pricing.Stay{
		BasePrice:             roomType.BasePrice,
		Nights:                in.nights,
		Guests:                len(in.req.Guests),
		IncludeBreakfast:      in.req.IncludeBreakfast,
		IncludeSpa:            in.req.IncludeSpa,
		TypeIncludesBreakfast: roomType.IncludesBreakfast,
		TypeIncludesSpa:       roomType.IncludesSpa,
	})

	if in.req.ClientTotal != nil && !s.rates.Matches(quote.Total, *in.req.ClientTotal) {
		return model.Reservation{}, nil, failure.PriceMismatch(quote.Total, *in.req.ClientTotal)
	}

	now := s.now()
	guests := make([]guestModel.Guest, len(in.req.Guests))
	guestIDs := make([]string, len(in.req.Guests))

	for i, guestReq := range in.req.Guests {
		guest := guestReq.ToModel(in.user, now)

		guestID, err := tx.UpsertGuest(ctx, guest)
		if err != nil {
			return model.Reservation{}, nil, fmt.Errorf("failed to upsert guest: %w", err)
		}

		guest.ID = guestID
		guests[i] = guest
		guestIDs[i] = guestID
	}

	reservation := in.req.ToModel(dto.NewReservation{
		ID:         in.id,
		RoomID:     roomID,
		RoomTypeID: roomType.ID,
		UserID:     in.user,
		CheckIn:    in.checkIn,
		CheckOut:   in.checkOut,
		Total:      quote.Total,
		Now:        now,
	})

	if err := tx.InsertReservation(ctx, reservation); err != nil {
		return model.Reservation{}, nil, fmt.Errorf("failed to insert reservation: %w", err)
	}

	if err := tx.LinkGuests(ctx, reservation.ID, guestIDs); err != nil {
		return model.Reservation{}, nil, fmt.Errorf("failed to link guests: %w", err)
	}

	return reservation, guests, nil
}

// visible hides other users' reservations from clients.
func visible(ctx context.Context, reservation model.Reservation) bool {
	if reservation.ID == constant.Empty {
		return false
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleClient {
		return true
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	return reservation.UserID == user
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err := uuid.Parse(id); err != nil {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	var (
		reservation model.Reservation
		guests      []guestModel.Guest
	)

	err = s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		reservation, err = tx.GetReservation(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get reservation: %w", err)
		}

		if !visible(ctx, reservation) {
			return failure.NotFound("reservation not found")
		}

		guests, err = tx.ListGuests(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list guests: %w", err)
		}

		return nil
	})
	if err != nil {
		if !failure.Is(err) {
			log.Error().Err(err).Str("reservationID", id).Msg("failed to get reservation")
		}

		return res, err
	}

	res.FromModel(reservation, guests)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter dto.ReservationFilter) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	group := filter.ToFilterGroup()

	total, err := s.repo.Count(ctx, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

// transition describes one lifecycle step and the room status it leaves behind.
type transition struct {
	to       model.Status
	event    event.Type
	guard    func(reservation model.Reservation, today time.Time) error
	roomSide func(ctx context.Context, tx repository.Tx, reservation model.Reservation, today time.Time) (roomModel.Status, bool, error)
}

func (s *serviceImpl) CheckIn(ctx context.Context, id string) (dto.ReservationResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.CheckIn")
	defer scope.End()

	res, err := s.transition(ctx, id, transition{
		to: model.StatusConfirmed,
		guard: func(reservation model.Reservation, today time.Time) error {
			if !reservation.CheckInDate.Equal(today) {
				return failure.InvalidStateTransition("check-in is only allowed on the check-in date", string(reservation.Status))
			}

			return nil
		},
		roomSide: func(context.Context, repository.Tx, model.Reservation, time.Time) (roomModel.Status, bool, error) {
			return roomModel.StatusOccupied, true, nil
		},
	})
	scope.TraceIfError(err)

	return res, err
}

func (s *serviceImpl) CheckOut(ctx context.Context, id string) (dto.ReservationResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.CheckOut")
	defer scope.End()

	res, err := s.transition(ctx, id, transition{
		to:    model.StatusFinalized,
		event: event.TypeFinalized,
		guard: func(reservation model.Reservation, today time.Time) error {
			if !reservation.CheckOutDate.Equal(today) {
				return failure.InvalidStateTransition("check-out is only allowed on the check-out date", string(reservation.Status))
			}

			return nil
		},
		roomSide: func(context.Context, repository.Tx, model.Reservation, time.Time) (roomModel.Status, bool, error) {
			return roomModel.StatusCleaning, true, nil
		},
	})
	scope.TraceIfError(err)

	return res, err
}

// Cancel only applies to pending reservations whose check-in has not passed.
// Confirmed stays are cancelled by the maintenance cascade alone.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (dto.ReservationResponse, error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Cancel")
	defer scope.End()

	res, err := s.transition(ctx, id, transition{
		to:    model.StatusCancelled,
		event: event.TypeCancelled,
		guard: func(reservation model.Reservation, today time.Time) error {
			if reservation.Status != model.StatusPending {
				return failure.InvalidStateTransition("only pending reservations can be cancelled", string(reservation.Status))
			}

			if reservation.CheckInDate.Before(today) {
				return failure.InvalidStateTransition("check-in date has already passed", string(reservation.Status))
			}

			return nil
		},
		roomSide: releaseRoom,
	})
	scope.TraceIfError(err)

	return res, err
}

// releaseRoom frees an occupied room when the cancelled stay is the one holding
// it today and no confirmed stay on the room covers today.
func releaseRoom(ctx context.Context, tx repository.Tx, reservation model.Reservation, today time.Time) (roomModel.Status, bool, error) {
	room, err := tx.GetRoomForUpdate(ctx, reservation.RoomID)
	if err != nil {
		return constant.Empty, false, fmt.Errorf("failed to get room: %w", err)
	}

	if room.Status != roomModel.StatusOccupied || !reservation.Interval().Covers(today) {
		return constant.Empty, false, nil
	}

	active, err := tx.ListActiveByRoom(ctx, reservation.RoomID)
	if err != nil {
		return constant.Empty, false, fmt.Errorf("failed to list room reservations: %w", err)
	}

	for _, other := range active {
		if other.ID != reservation.ID && other.Status == model.StatusConfirmed && other.Interval().Covers(today) {
			return constant.Empty, false, nil
		}
	}

	return roomModel.StatusAvailable, true, nil
}

func (s *serviceImpl) transition(ctx context.Context, id string, step transition) (res dto.ReservationResponse, err error) {
	if _, err := uuid.Parse(id); err != nil {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	var (
		reservation model.Reservation
		from        model.Status
	)

	err = s.store.Atomic(ctx, constant.Empty, func(ctx context.Context, tx repository.Tx) error {
		reservation, err = tx.GetReservationForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get reservation: %w", err)
		}

		if !visible(ctx, reservation) {
			return failure.NotFound("reservation not found")
		}

		from = reservation.Status

		if !from.CanTransitionTo(step.to) {
			return failure.InvalidStateTransition(fmt.Sprintf("cannot move reservation from %s to %s", from, step.to), string(from))
		}

		today := s.today()
		if err := step.guard(reservation, today); err != nil {
			return err
		}

		roomStatus, change, err := step.roomSide(ctx, tx, reservation, today)
		if err != nil {
			return err
		}

		now := s.now()

		if err := tx.UpdateReservationStatus(ctx, id, step.to, now, user); err != nil {
			return fmt.Errorf("failed to update reservation: %w", err)
		}

		if change {
			if err := tx.UpdateRoomStatus(ctx, reservation.RoomID, roomStatus, now, user); err != nil {
				return fmt.Errorf("failed to update room status: %w", err)
			}

			metrics.RoomStatusChanges.WithLabelValues(string(roomStatus)).Inc()
		}

		reservation.Status = step.to
		reservation.ModifiedAt = now
		reservation.ModifiedBy = user

		if step.to == model.StatusCancelled {
			reservation.CancelledAt = &now
		}

		return nil
	})
	if err != nil {
		if !failure.Is(err) {
			log.Error().Err(err).Str("reservationID", id).Str("to", string(step.to)).Msg("failed to transition reservation")
		}

		return res, err
	}

	metrics.LifecycleTransitions.WithLabelValues(string(from), string(step.to)).Inc()
	log.Info().Str("reservationID", id).Str("from", string(from)).Str("to", string(step.to)).Msg("reservation transitioned")

	if step.event != constant.Empty {
		reason := constant.Empty
		if step.to == model.StatusCancelled {
			reason = event.ReasonGuestRequest
		}

		s.publish(ctx, event.FromReservation(step.event, reservation, reason, s.now()))
	}

	res.FromModel(reservation, nil)

	return res, nil
}

// ExpireStale cancels pending reservations created before now-olderThan and
// returns how many it cancelled.
func (s *serviceImpl) ExpireStale(ctx context.Context, olderThan time.Duration) (count int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.ExpireStale")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cutoff := s.now().Add(-olderThan)

	var ids []string

	err = s.store.View(ctx, func(ctx context.Context, tx repository.Tx) error {
		ids, err = tx.ListStalePending(ctx, cutoff, staleBatchLimit)

		return err
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list stale pending reservations")

		return 0, fmt.Errorf("failed to list stale pending reservations: %w", err)
	}

	for _, id := range ids {
		expired, err := s.expire(ctx, id, cutoff)
		if err != nil {
			log.Error().Err(err).Str("reservationID", id).Msg("failed to expire reservation")

			continue
		}

		if expired {
			count++
		}
	}

	if count > 0 {
		log.Info().Int("count", count).Msg("expired stale pending reservations")
	}

	return count, nil
}

// expire re-checks the row under lock since a check-in may have raced the sweep.
func (s *serviceImpl) expire(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	var reservation model.Reservation

	err := s.store.Atomic(ctx, constant.Empty, func(ctx context.Context, tx repository.Tx) error {
		var err error

		reservation, err = tx.GetReservationForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get reservation: %w", err)
		}

		if reservation.Status != model.StatusPending || !reservation.CreatedAt.Before(cutoff) {
			reservation = model.Reservation{}

			return nil
		}

		now := s.now()
		if err := tx.UpdateReservationStatus(ctx, id, model.StatusCancelled, now, sweeperUser); err != nil {
			return fmt.Errorf("failed to cancel reservation: %w", err)
		}

		reservation.Status = model.StatusCancelled
		reservation.CancelledAt = &now

		return nil
	})
	if err != nil || reservation.ID == constant.Empty {
		return false, err
	}

	metrics.ExpiredPending.Inc()
	metrics.LifecycleTransitions.WithLabelValues(string(model.StatusPending), string(model.StatusCancelled)).Inc()

	// the sweeper closes the broker once ExpireStale returns
	s.send(context.WithoutCancel(ctx), event.FromReservation(event.TypeCancelled, reservation, event.ReasonExpired, s.now()))

	return true, nil
}

// publish never blocks the caller; the reservation is already committed.
func (s *serviceImpl) publish(ctx context.Context, events ...event.Event) {
	go s.send(context.WithoutCancel(ctx), events...)
}

func (s *serviceImpl) send(ctx context.Context, events ...event.Event) {
	if err := s.events.Publish(ctx, events...); err != nil {
		log.Error().Err(err).Msg("failed to publish reservation event")
	}
}
