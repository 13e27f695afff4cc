package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel/config"
	otelMocks "hotel/infras/otel/mocks"
	paymentMocks "hotel/infras/payment/mocks"
	"hotel/internal/domains/reservation/event"
	reservationModel "hotel/internal/domains/reservation/model"
	reservationDto "hotel/internal/domains/reservation/model/dto"
	reservationService "hotel/internal/domains/reservation/service"
	roomMocks "hotel/internal/domains/room/mocks"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/service"
	roomTypeMocks "hotel/internal/domains/roomtype/mocks"
	roomTypeModel "hotel/internal/domains/roomtype/model"
	"hotel/internal/testinfra"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const suiteID = "0b9c7f8e-3d51-4c1a-9a57-5c0f6a1e2d11"

type fixture struct {
	store        *testinfra.Store
	events       *testinfra.Publisher
	repo         *roomMocks.MockRoom
	roomTypes    *roomTypeMocks.MockRoomType
	svc          service.Room
	reservations reservationService.Reservation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Booking.PriceTolerance = 0.01

	store := testinfra.NewStore()
	store.AddRoomType(roomTypeModel.RoomType{ID: suiteID, Name: "Suite", BasePrice: 15000, MaxGuests: 2, IsActive: true})
	store.AddRoom(model.Room{ID: "501", Floor: 5, RoomTypeID: suiteID, Status: model.StatusAvailable})

	gateway := paymentMocks.NewMockGateway(ctrl)
	gateway.EXPECT().Captured(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	f := &fixture{
		store:     store,
		events:    testinfra.NewPublisher(),
		repo:      roomMocks.NewMockRoom(ctrl),
		roomTypes: roomTypeMocks.NewMockRoomType(ctrl),
	}

	f.svc = service.New(f.repo, f.roomTypes, store, f.events, cfg, otelMocks.NewOtel())

	// a separate publisher keeps booking events out of the room assertions
	clock := func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	f.reservations = reservationService.NewWithClock(store, nil, gateway, testinfra.NewPublisher(), cfg, otelMocks.NewOtel(), clock)

	return f
}

func operator() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "operator-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleOperator)
}

func (f *fixture) book(t *testing.T, checkIn, checkOut string) reservationDto.ReservationResponse {
	t.Helper()

	res, err := f.reservations.Create(operator(), reservationDto.CreateReservationRequest{
		RoomTypeID:       suiteID,
		Guests:           []reservationDto.GuestRequest{{Name: "Ana Diaz", DNI: "X1234567"}},
		PaymentReference: "pay_" + uuid.NewString(),
		StayRequest:      reservationDto.StayRequest{CheckIn: checkIn, CheckOut: checkOut},
	})
	require.NoError(t, err)

	return res
}

func (f *fixture) available(t *testing.T, checkIn, checkOut string) []string {
	t.Helper()

	res, err := f.reservations.Availability(operator(), suiteID, reservationDto.StayRequest{CheckIn: checkIn, CheckOut: checkOut})
	require.NoError(t, err)

	return res.RoomIDs
}

func TestSetStatus_MaintenanceCascade(t *testing.T) {
	f := newFixture(t)

	booked := f.book(t, "2025-06-01", "2025-06-03")

	_, err := f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: model.StatusMaintenance})

	var fail *failure.Failure
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, failure.KindActiveReservationsConflict, fail.Kind)
	assert.Equal(t, []string{booked.ID}, fail.Details[failure.DetailReservationIDs])

	room, _ := f.store.Room("501")
	assert.Equal(t, model.StatusAvailable, room.Status, "unconfirmed cascade changes nothing")

	res, err := f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: model.StatusMaintenance, Force: true})
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, res.Room.Status)
	assert.Equal(t, []string{booked.ID}, res.CancelledReservations)

	stored, _ := f.store.Reservation(booked.ID)
	assert.Equal(t, reservationModel.StatusCancelled, stored.Status)
	assert.NotNil(t, stored.CancelledAt)

	room, _ = f.store.Room("501")
	assert.Equal(t, model.StatusMaintenance, room.Status)

	events := f.events.WaitFor(1, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, event.TypeCancelled, events[0].Type)
	assert.Equal(t, event.ReasonMaintenance, events[0].Reason)
	assert.Equal(t, booked.ID, events[0].ReservationID)
	assert.Equal(t, string(reservationModel.StatusCancelled), events[0].Status, "events describe the reservation after the cascade")

	assert.Empty(t, f.available(t, "2025-06-01", "2025-06-03"), "room in maintenance is not offered")

	_, err = f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: model.StatusAvailable})
	require.NoError(t, err)

	assert.Equal(t, []string{"501"}, f.available(t, "2025-06-01", "2025-06-03"))
	f.book(t, "2025-06-01", "2025-06-03")
}

func TestSetStatus_WithoutReservations(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: model.StatusMaintenance})
	require.NoError(t, err)
	assert.Equal(t, model.StatusMaintenance, res.Room.Status)
	assert.Empty(t, res.CancelledReservations)

	room, _ := f.store.Room("501")
	assert.Equal(t, "operator-1", room.ModifiedBy)
	assert.Empty(t, f.events.Events())
}

func TestSetStatus_LeavesReservationsAlone(t *testing.T) {
	f := newFixture(t)

	booked := f.book(t, "2025-06-01", "2025-06-03")

	for _, status := range []model.Status{model.StatusCleaning, model.StatusOccupied, model.StatusAvailable} {
		_, err := f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: status, Force: true})
		require.NoError(t, err)

		stored, _ := f.store.Reservation(booked.ID)
		assert.Equal(t, reservationModel.StatusPending, stored.Status, "status %s", status)
	}
}

func TestSetStatus_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetStatus(operator(), "999", dto.SetStatusRequest{Status: model.StatusCleaning})
	assert.True(t, failure.IsKind(err, failure.KindNotFound))

	_, err = f.svc.SetStatus(operator(), "501", dto.SetStatusRequest{Status: "closed"})
	assert.True(t, failure.IsKind(err, failure.KindBadRequest))
}

func TestDelete(t *testing.T) {
	t.Run("unreferenced room", func(t *testing.T) {
		f := newFixture(t)

		require.NoError(t, f.svc.Delete(operator(), "501"))

		_, ok := f.store.Room("501")
		assert.False(t, ok)
	})

	t.Run("referenced by a cancelled reservation", func(t *testing.T) {
		f := newFixture(t)

		booked := f.book(t, "2025-06-01", "2025-06-03")
		_, err := f.reservations.Cancel(operator(), booked.ID)
		require.NoError(t, err)

		err = f.svc.Delete(operator(), "501")

		var fail *failure.Failure
		require.ErrorAs(t, err, &fail)
		assert.Equal(t, failure.KindActiveReservationsConflict, fail.Kind)
		assert.Equal(t, []string{booked.ID}, fail.Details[failure.DetailReservationIDs])

		_, ok := f.store.Room("501")
		assert.True(t, ok)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		assert.True(t, failure.IsKind(f.svc.Delete(operator(), "999"), failure.KindNotFound))
	})
}

func TestCreate(t *testing.T) {
	req := dto.CreateRoomRequest{ID: "502", Floor: 5, RoomTypeID: suiteID}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantKind  failure.Kind
		wantErr   bool
	}{
		{
			name: "successful creation",
			setupMock: func(f *fixture) {
				f.roomTypes.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, room model.Room) error {
					assert.Equal(t, model.StatusAvailable, room.Status)
					assert.Equal(t, "operator-1", room.CreatedBy)

					return nil
				})
			},
		},
		{
			name: "unknown room type",
			setupMock: func(f *fixture) {
				f.roomTypes.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantKind: failure.KindRoomTypeUnavailable,
		},
		{
			name: "duplicate room number",
			setupMock: func(f *fixture) {
				f.roomTypes.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  true,
			wantKind: failure.KindConflict,
		},
		{
			name: "repository error",
			setupMock: func(f *fixture) {
				f.roomTypes.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr:  true,
			wantKind: failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(operator(), req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, failure.GetKind(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "502", res.ID)
		})
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{ID: "501", Floor: 5, Status: model.StatusCleaning}, nil)

	res, err := f.svc.Get(operator(), "501")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCleaning, res.Status)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

	_, err = f.svc.Get(operator(), "999")
	assert.True(t, failure.IsKind(err, failure.KindNotFound))
}

func TestGetAll(t *testing.T) {
	f := newFixture(t)

	params := gDto.QueryParams{Page: 1, Limit: 2}
	filter := dto.RoomFilter{RoomTypeID: suiteID}

	f.repo.EXPECT().Count(gomock.Any(), filter.ToFilterGroup()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, filter.ToFilterGroup()).Return([]model.Room{{ID: "501"}, {ID: "502"}}, nil)

	res, err := f.svc.GetAll(operator(), params, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Rooms, 2)
}
