package dto_test

import (
	"strings"
	"testing"
	"time"

	guestModel "hotel/internal/domains/guest/model"
	"hotel/internal/domains/reservation/model"
	"hotel/internal/domains/reservation/model/dto"
	"hotel/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReservationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "valid booking",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"2025-06-01","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz","dni":"X1234567"}],"client_total":30000,"payment_reference":"pay_1"}`,
		},
		{
			name: "bad date",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"06/01/2025","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz","dni":"X1234567"}],"payment_reference":"pay_1"}`,
			wantErr: true,
		},
		{
			name: "guest without dni",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"2025-06-01","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz"}],"payment_reference":"pay_1"}`,
			wantErr: true,
		},
		{
			name: "unknown field",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"2025-06-01","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz","dni":"X1234567"}],"payment_reference":"pay_1","room_id":"501"}`,
			wantErr: true,
		},
		{
			name: "same dni twice",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"2025-06-01","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz","dni":"12345678"},{"name":"Ana D.","dni":"12345678"}],"payment_reference":"pay_1"}`,
			wantErr: true,
		},
		{
			name: "missing payment reference",
			body: `{"room_type_id":"7b0c8f0e-9a4e-4a43-9d2c-0c2f1a6b0e11","check_in":"2025-06-01","check_out":"2025-06-03",
				"guests":[{"name":"Ana Diaz","dni":"X1234567"}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.CreateReservationRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			checkIn, checkOut, err := req.Dates()
			require.NoError(t, err)
			assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), checkIn)
			assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), checkOut)
			require.NotNil(t, req.ClientTotal)
			assert.InDelta(t, 30000, *req.ClientTotal, 0.001)
		})
	}
}

func TestCreateReservationRequest_RepeatedDNI(t *testing.T) {
	req := dto.CreateReservationRequest{Guests: []dto.GuestRequest{
		{Name: "Ana", DNI: "A1"}, {Name: "Luis", DNI: "B2"}, {Name: "Ana again", DNI: "A1"},
	}}

	dni, repeated := req.RepeatedDNI()
	assert.True(t, repeated)
	assert.Equal(t, "A1", dni)

	req.Guests = req.Guests[:2]

	_, repeated = req.RepeatedDNI()
	assert.False(t, repeated)
}

func TestReservationResponse_FromModel(t *testing.T) {
	cancelledAt := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	reservation := model.Reservation{
		ID:           "r1",
		RoomID:       "501",
		CheckInDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:       model.StatusCancelled,
		TotalPrice:   30000,
		DepositPaid:  30000,
		CancelledAt:  &cancelledAt,
	}

	var res dto.ReservationResponse
	res.FromModel(reservation, []guestModel.Guest{{ID: "g1", Name: "Ana Diaz", DNI: "X1234567"}})

	assert.Equal(t, "2025-06-01", res.CheckIn)
	assert.Equal(t, "2025-06-03", res.CheckOut)
	assert.NotNil(t, res.CancelledAt)
	require.Len(t, res.Guests, 1)
	assert.Equal(t, "X1234567", res.Guests[0].DNI)
}

func TestReservationFilter_ToFilterGroup(t *testing.T) {
	filter := dto.ReservationFilter{Status: "pending", UserID: "u1", FromDate: "2025-06-01", ToDate: "2025-06-30"}

	group := filter.ToFilterGroup()
	where, args := group.GetWhereClause()

	assert.Contains(t, where, "reservations.status = :status")
	assert.Contains(t, where, "reservations.user_id = :user_id")
	assert.Contains(t, where, "reservations.check_out_date >= :from_date")
	assert.Contains(t, where, "reservations.check_in_date <= :to_date")
	assert.Equal(t, "pending", args["status"])
	assert.Equal(t, "2025-06-30", args["to_date"])

	empty := dto.ReservationFilter{}.ToFilterGroup()
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}
