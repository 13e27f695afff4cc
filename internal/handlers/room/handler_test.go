package room_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel/infras/otel/mocks"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	serviceMocks "hotel/internal/domains/room/service/mocks"
	"hotel/internal/handlers/room"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const suiteID = "0b9c7f8e-3d51-4c1a-9a57-5c0f6a1e2d11"

func setup(t *testing.T) (*serviceMocks.MockRoom, http.Handler) {
	ctrl := gomock.NewController(t)

	svc := serviceMocks.NewMockRoom(ctrl)
	handler := room.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Route("/v1", handler.Router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestCreateRoom(t *testing.T) {
	svc, router := setup(t)

	tests := []struct {
		name       string
		body       string
		setupMock  func()
		wantStatus int
	}{
		{
			name: "created",
			body: `{"id": "501", "floor": 5, "room_type_id": "` + suiteID + `"}`,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.RoomResponse{ID: "501", Floor: 5, RoomTypeID: suiteID, Status: model.StatusAvailable}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "invalid room type id",
			body:       `{"id": "501", "floor": 5, "room_type_id": "suite"}`,
			setupMock:  func() {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "inactive room type",
			body: `{"id": "501", "floor": 5, "room_type_id": "` + suiteID + `"}`,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.RoomResponse{}, failure.RoomTypeUnavailable("room type is not bookable"))
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec := serve(router, http.MethodPost, "/v1/rooms", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGetRooms(t *testing.T) {
	svc, router := setup(t)

	t.Run("floor filter", func(t *testing.T) {
		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params gDto.QueryParams, filter dto.RoomFilter) (dto.GetRoomsResponse, error) {
				require.NotNil(t, filter.Floor)
				assert.Equal(t, 5, *filter.Floor)
				assert.Equal(t, "cleaning", filter.Status)
				assert.Equal(t, model.FieldFloor, params.SortBy)

				return dto.GetRoomsResponse{TotalData: 2}, nil
			})

		rec := serve(router, http.MethodGet, "/v1/rooms?floor=5&status=cleaning&sort_by=floor", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("floor is not a number", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/rooms?floor=top", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/rooms?status=closed", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSetRoomStatus(t *testing.T) {
	svc, router := setup(t)

	t.Run("blocked by reservations", func(t *testing.T) {
		svc.EXPECT().SetStatus(gomock.Any(), "501", dto.SetStatusRequest{Status: "maintenance"}).
			Return(dto.StatusChangeResponse{}, failure.ActiveReservationsConflict("room has active reservations", []string{"res-1"}))

		rec := serve(router, http.MethodPatch, "/v1/rooms/501/status", `{"status": "maintenance"}`)

		require.Equal(t, http.StatusConflict, rec.Code)

		var body struct {
			Kind    failure.Kind   `json:"kind"`
			Details map[string]any `json:"details"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, failure.KindActiveReservationsConflict, body.Kind)
		assert.Equal(t, []any{"res-1"}, body.Details[failure.DetailReservationIDs])
	})

	t.Run("forced", func(t *testing.T) {
		svc.EXPECT().SetStatus(gomock.Any(), "501", dto.SetStatusRequest{Status: "maintenance", Force: true}).
			Return(dto.StatusChangeResponse{
				Room:                  dto.RoomResponse{ID: "501", Status: model.StatusMaintenance},
				CancelledReservations: []string{"res-1"},
			}, nil)

		rec := serve(router, http.MethodPatch, "/v1/rooms/501/status", `{"status": "maintenance", "force": true}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.StatusChangeResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []string{"res-1"}, body.Data.CancelledReservations)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := serve(router, http.MethodPatch, "/v1/rooms/501/status", `{"status": "closed"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteRoom(t *testing.T) {
	svc, router := setup(t)

	svc.EXPECT().Delete(gomock.Any(), "501").Return(nil)
	svc.EXPECT().Delete(gomock.Any(), "502").Return(failure.NotFound("room not found"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/v1/rooms/501", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/v1/rooms/502", "").Code)
}
