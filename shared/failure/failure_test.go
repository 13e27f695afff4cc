package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"hotel/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		kind    failure.Kind
		message string
		details map[string]any
	}{
		{
			name:    "bad request from error",
			err:     failure.BadRequest(errors.New("unexpected EOF")),
			code:    http.StatusBadRequest,
			kind:    failure.KindBadRequest,
			message: "unexpected EOF",
		},
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("floor must be a number"),
			code:    http.StatusBadRequest,
			kind:    failure.KindBadRequest,
			message: "floor must be a number",
		},
		{
			name:    "unauthorized",
			err:     failure.Unauthorized("Token has expired"),
			code:    http.StatusUnauthorized,
			kind:    failure.KindUnauthorized,
			message: "Token has expired",
		},
		{
			name:    "forbidden",
			err:     failure.ForbiddenError,
			code:    http.StatusForbidden,
			kind:    failure.KindForbidden,
			message: "You don't have the required permissions",
		},
		{
			name:    "not found",
			err:     failure.NotFound("room not found"),
			code:    http.StatusNotFound,
			kind:    failure.KindNotFound,
			message: "room not found",
		},
		{
			name:    "conflict",
			err:     failure.Conflict("room 501 already exists"),
			code:    http.StatusConflict,
			kind:    failure.KindConflict,
			message: "room 501 already exists",
		},
		{
			name:    "room type unavailable",
			err:     failure.RoomTypeUnavailable("room type is inactive"),
			code:    http.StatusUnprocessableEntity,
			kind:    failure.KindRoomTypeUnavailable,
			message: "room type is inactive",
		},
		{
			name:    "capacity exceeded",
			err:     failure.CapacityExceeded(3, 2),
			code:    http.StatusUnprocessableEntity,
			kind:    failure.KindCapacityExceeded,
			message: "guest count exceeds room type capacity",
			details: map[string]any{failure.DetailRequestedGuests: 3, failure.DetailMaxGuests: 2},
		},
		{
			name:    "invalid date range",
			err:     failure.InvalidDateRange("check-out must be after check-in"),
			code:    http.StatusBadRequest,
			kind:    failure.KindInvalidDateRange,
			message: "check-out must be after check-in",
		},
		{
			name:    "no availability",
			err:     failure.NoAvailability("no free room"),
			code:    http.StatusConflict,
			kind:    failure.KindNoAvailability,
			message: "no free room",
		},
		{
			name:    "price mismatch",
			err:     failure.PriceMismatch(30000, 29999),
			code:    http.StatusConflict,
			kind:    failure.KindPriceMismatch,
			message: "declared total does not match computed price",
			details: map[string]any{failure.DetailExpectedTotal: 30000.0, failure.DetailDeclaredTotal: 29999.0},
		},
		{
			name:    "invalid state transition",
			err:     failure.InvalidStateTransition("cannot check in", "finalized"),
			code:    http.StatusConflict,
			kind:    failure.KindInvalidStateTransition,
			message: "cannot check in",
			details: map[string]any{failure.DetailCurrentStatus: "finalized"},
		},
		{
			name:    "active reservations conflict",
			err:     failure.ActiveReservationsConflict("room has active reservations", []string{"r1"}),
			code:    http.StatusConflict,
			kind:    failure.KindActiveReservationsConflict,
			message: "room has active reservations",
			details: map[string]any{failure.DetailReservationIDs: []string{"r1"}},
		},
		{
			name:    "payment not captured",
			err:     failure.PaymentNotCaptured("pay_1"),
			code:    http.StatusPaymentRequired,
			kind:    failure.KindPaymentNotCaptured,
			message: "payment has not been captured",
			details: map[string]any{failure.DetailPaymentRef: "pay_1"},
		},
		{
			name:    "payment reference used",
			err:     failure.PaymentReferenceUsed("pay_1"),
			code:    http.StatusConflict,
			kind:    failure.KindConflict,
			message: "payment reference is already used by another reservation",
			details: map[string]any{failure.DetailPaymentRef: "pay_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)

			assert.Equal(t, tt.code, failure.GetCode(wrapped))
			assert.Equal(t, tt.kind, failure.GetKind(wrapped))
			assert.True(t, failure.IsKind(wrapped, tt.kind))
			assert.True(t, failure.Is(wrapped))
			assert.Equal(t, tt.message, tt.err.Error())

			var fail *failure.Failure
			require.ErrorAs(t, tt.err, &fail)
			assert.Equal(t, tt.details, fail.Details)
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestNonFailure(t *testing.T) {
	plain := errors.New("connection reset")

	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(plain))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
	assert.Equal(t, failure.KindInternal, failure.GetKind(plain))
	assert.False(t, failure.IsKind(plain, failure.KindInternal))
	assert.False(t, failure.Is(plain))
}

func TestFailure_WithDetail(t *testing.T) {
	base := failure.NoAvailability("no free room")
	withRefund := base.WithDetail(failure.DetailRefundRequired, true)

	assert.Nil(t, base.Details, "original stays untouched")
	assert.Equal(t, map[string]any{failure.DetailRefundRequired: true}, withRefund.Details)
	assert.Equal(t, failure.KindNoAvailability, withRefund.Kind)

	paid := failure.PaymentNotCaptured("pay_1").WithDetail(failure.DetailRefundRequired, false)
	assert.Equal(t, "pay_1", paid.Details[failure.DetailPaymentRef])
}
