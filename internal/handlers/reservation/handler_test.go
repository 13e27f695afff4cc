package reservation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel/infras/otel/mocks"
	"hotel/internal/domains/reservation/model"
	"hotel/internal/domains/reservation/model/dto"
	serviceMocks "hotel/internal/domains/reservation/service/mocks"
	"hotel/internal/handlers/reservation"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const roomTypeID = "0b9c7f8e-3d51-4c1a-9a57-5c0f6a1e2d11"

type errorBody struct {
	Error   string         `json:"error"`
	Kind    failure.Kind   `json:"kind"`
	Details map[string]any `json:"details"`
}

func newRouter(svc *serviceMocks.MockReservation, userID, role string) http.Handler {
	handler := reservation.New(svc, mocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID != constant.Empty {
				ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
				ctx = context.WithValue(ctx, constant.ContextKeyUserRole, role)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Route("/v1", handler.Router)

	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", constant.ContentTypeJSON)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

const bookingBody = `{
	"room_type_id": "` + roomTypeID + `",
	"check_in": "2025-06-01",
	"check_out": "2025-06-03",
	"guests": [{"name": "Ana Perez", "dni": "DNI00001"}],
	"payment_reference": "pay_1"
}`

func TestCreateReservation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)
	router := newRouter(svc, "user-1", constant.RoleClient)

	tests := []struct {
		name       string
		body       string
		setupMock  func()
		wantStatus int
		wantKind   failure.Kind
	}{
		{
			name: "booked",
			body: bookingBody,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, req dto.CreateReservationRequest) (dto.ReservationResponse, error) {
						assert.Equal(t, roomTypeID, req.RoomTypeID)
						assert.Equal(t, "2025-06-01", req.CheckIn)
						assert.Len(t, req.Guests, 1)

						return dto.ReservationResponse{ID: "res-1", RoomID: "501", Status: model.StatusPending, TotalPrice: 30000}, nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "unknown field",
			body:       `{"room_type_id": "` + roomTypeID + `", "room_id": "501"}`,
			setupMock:  func() {},
			wantStatus: http.StatusBadRequest,
			wantKind:   failure.KindBadRequest,
		},
		{
			name:       "malformed dni",
			body:       strings.Replace(bookingBody, "DNI00001", "x", 1),
			setupMock:  func() {},
			wantStatus: http.StatusBadRequest,
			wantKind:   failure.KindBadRequest,
		},
		{
			name: "no room left",
			body: bookingBody,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.ReservationResponse{}, failure.NoAvailability("no room available"))
			},
			wantStatus: http.StatusConflict,
			wantKind:   failure.KindNoAvailability,
		},
		{
			name: "payment not captured",
			body: bookingBody,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.ReservationResponse{}, failure.PaymentNotCaptured("pay_1"))
			},
			wantStatus: http.StatusPaymentRequired,
			wantKind:   failure.KindPaymentNotCaptured,
		},
		{
			name: "unexpected error is hidden",
			body: bookingBody,
			setupMock: func() {
				svc.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(dto.ReservationResponse{}, errors.New("pq: connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
			wantKind:   failure.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec := serve(router, http.MethodPost, "/v1/reservations", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantKind == constant.Empty {
				var body struct {
					Data dto.ReservationResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "res-1", body.Data.ID)
				assert.Equal(t, "501", body.Data.RoomID)

				return
			}

			body := decodeError(t, rec)
			assert.Equal(t, tt.wantKind, body.Kind)

			if tt.wantKind == failure.KindInternal {
				assert.Equal(t, constant.ResponseErrorInternal, body.Error)
				assert.NotContains(t, rec.Body.String(), "pq:")
			}
		})
	}
}

func TestQuote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)
	router := newRouter(svc, "user-1", constant.RoleClient)

	svc.EXPECT().Quote(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req dto.QuoteRequest) (dto.QuoteResponse, error) {
			assert.True(t, req.IncludeBreakfast)
			assert.Equal(t, 2, req.Guests)

			return dto.QuoteResponse{RoomTypeID: req.RoomTypeID, Nights: 2, Total: 36000, Available: true}, nil
		})

	rec := serve(router, http.MethodPost, "/v1/quotes", `{
		"room_type_id": "`+roomTypeID+`",
		"check_in": "2025-06-01",
		"check_out": "2025-06-03",
		"guests": 2,
		"include_breakfast": true
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data dto.QuoteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 36000.0, body.Data.Total, 0.001)
	assert.True(t, body.Data.Available)
}

func TestGetReservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)
	router := newRouter(svc, "operator-1", constant.RoleOperator)

	t.Run("filters and sort are forwarded", func(t *testing.T) {
		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params gDto.QueryParams, filter dto.ReservationFilter) (dto.GetReservationsResponse, error) {
				assert.Equal(t, model.FieldCheckInDate, params.SortBy)
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, string(model.StatusConfirmed), filter.Status)
				assert.Equal(t, "501", filter.RoomID)
				assert.Equal(t, "2025-06-01", filter.FromDate)

				return dto.GetReservationsResponse{TotalData: 1}, nil
			})

		rec := serve(router, http.MethodGet, "/v1/reservations?page=2&sort_by=check_in_date&status=confirmed&room_id=501&from=2025-06-01", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown sort column is dropped", func(t *testing.T) {
		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params gDto.QueryParams, _ dto.ReservationFilter) (dto.GetReservationsResponse, error) {
				assert.Empty(t, params.SortBy)

				return dto.GetReservationsResponse{}, nil
			})

		rec := serve(router, http.MethodGet, "/v1/reservations?sort_by=payment_reference", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid filter", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/reservations?status=archived", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, failure.KindBadRequest, decodeError(t, rec).Kind)
	})

	t.Run("invalid date", func(t *testing.T) {
		rec := serve(router, http.MethodGet, "/v1/reservations?to=06/01/2025", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetMyReservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)

	t.Run("scoped to the caller", func(t *testing.T) {
		router := newRouter(svc, "guest-7", constant.RoleClient)

		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ gDto.QueryParams, filter dto.ReservationFilter) (dto.GetReservationsResponse, error) {
				assert.Equal(t, "guest-7", filter.UserID)
				assert.Empty(t, filter.RoomID)

				return dto.GetReservationsResponse{}, nil
			})

		rec := serve(router, http.MethodGet, "/v1/reservations/mine?user_id=someone-else&room_id=501", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		router := newRouter(svc, constant.Empty, constant.Empty)

		rec := serve(router, http.MethodGet, "/v1/reservations/mine", "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetReservationByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)
	router := newRouter(svc, "guest-7", constant.RoleClient)

	svc.EXPECT().Get(gomock.Any(), "res-1").Return(dto.ReservationResponse{ID: "res-1"}, nil)
	svc.EXPECT().Get(gomock.Any(), "res-2").Return(dto.ReservationResponse{}, failure.NotFound("reservation not found"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/v1/reservations/res-1", "").Code)

	rec := serve(router, http.MethodGet, "/v1/reservations/res-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, failure.KindNotFound, decodeError(t, rec).Kind)
}

func TestTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := serviceMocks.NewMockReservation(ctrl)
	router := newRouter(svc, "operator-1", constant.RoleOperator)

	tests := []struct {
		name       string
		path       string
		setupMock  func()
		wantStatus int
		wantResult model.Status
	}{
		{
			name: "check in",
			path: "/v1/reservations/res-1/check-in",
			setupMock: func() {
				svc.EXPECT().CheckIn(gomock.Any(), "res-1").
					Return(dto.ReservationResponse{ID: "res-1", Status: model.StatusConfirmed}, nil)
			},
			wantStatus: http.StatusOK,
			wantResult: model.StatusConfirmed,
		},
		{
			name: "check out",
			path: "/v1/reservations/res-1/check-out",
			setupMock: func() {
				svc.EXPECT().CheckOut(gomock.Any(), "res-1").
					Return(dto.ReservationResponse{ID: "res-1", Status: model.StatusFinalized}, nil)
			},
			wantStatus: http.StatusOK,
			wantResult: model.StatusFinalized,
		},
		{
			name: "cancel rejected",
			path: "/v1/reservations/res-1/cancel",
			setupMock: func() {
				svc.EXPECT().Cancel(gomock.Any(), "res-1").
					Return(dto.ReservationResponse{}, failure.InvalidStateTransition("only pending reservations can be cancelled", "confirmed"))
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			rec := serve(router, http.MethodPost, tt.path, "")

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantResult != constant.Empty {
				var body struct {
					Data dto.ReservationResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantResult, body.Data.Status)

				return
			}

			body := decodeError(t, rec)
			assert.Equal(t, failure.KindInvalidStateTransition, body.Kind)
			assert.Equal(t, "confirmed", body.Details[failure.DetailCurrentStatus])
		})
	}
}
