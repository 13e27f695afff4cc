package failure

import (
	"errors"
	"maps"
	"net/http"
)

// Kind names a caller-actionable condition and is echoed in the response body.
type Kind string

const (
	KindBadRequest                 Kind = "BAD_REQUEST"
	KindUnauthorized               Kind = "UNAUTHORIZED"
	KindForbidden                  Kind = "FORBIDDEN"
	KindNotFound                   Kind = "NOT_FOUND"
	KindConflict                   Kind = "CONFLICT"
	KindInternal                   Kind = "INTERNAL"
	KindRoomTypeUnavailable        Kind = "ROOM_TYPE_UNAVAILABLE"
	KindCapacityExceeded           Kind = "CAPACITY_EXCEEDED"
	KindInvalidDateRange           Kind = "INVALID_DATE_RANGE"
	KindNoAvailability             Kind = "NO_AVAILABILITY"
	KindPriceMismatch              Kind = "PRICE_MISMATCH"
	KindInvalidStateTransition     Kind = "INVALID_STATE_TRANSITION"
	KindActiveReservationsConflict Kind = "ACTIVE_RESERVATIONS_CONFLICT"
	KindPaymentNotCaptured         Kind = "PAYMENT_NOT_CAPTURED"
)

const (
	DetailCurrentStatus   = "current_status"
	DetailReservationIDs  = "reservation_ids"
	DetailRefundRequired  = "refund_required"
	DetailPaymentRef      = "payment_reference"
	DetailExpectedTotal   = "expected_total"
	DetailDeclaredTotal   = "declared_total"
	DetailMaxGuests       = "max_guests"
	DetailRequestedGuests = "requested_guests"
)

// Failure is an error the caller can act on. Code is the HTTP status it maps
// to; Kind and Details are rendered in the error body.
type Failure struct {
	Code    int            `json:"code"`
	Kind    Kind           `json:"kind,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}

func newFailure(code int, kind Kind, message string, details map[string]any) *Failure {
	return &Failure{Code: code, Kind: kind, Message: message, Details: details}
}

func (e *Failure) Error() string {
	return e.Message
}

// WithDetail returns a copy carrying one more detail entry.
func (e *Failure) WithDetail(key string, value any) *Failure {
	details := maps.Clone(e.Details)
	if details == nil {
		details = map[string]any{}
	}

	details[key] = value

	return newFailure(e.Code, e.Kind, e.Message, details)
}

// BadRequest wraps a decoding or parsing error. A nil error stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, KindBadRequest, err.Error(), nil)
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, KindBadRequest, msg, nil)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, KindUnauthorized, msg, nil)
}

func NotFound(entityName string) error {
	return newFailure(http.StatusNotFound, KindNotFound, entityName, nil)
}

func Conflict(message string) error {
	return newFailure(http.StatusConflict, KindConflict, message, nil)
}

// RoomTypeUnavailable is returned when a room type is missing or inactive.
func RoomTypeUnavailable(msg string) *Failure {
	return newFailure(http.StatusUnprocessableEntity, KindRoomTypeUnavailable, msg, nil)
}

// CapacityExceeded is returned when the guest count is outside [1, maxGuests].
func CapacityExceeded(requested, maxGuests int) *Failure {
	return newFailure(http.StatusUnprocessableEntity, KindCapacityExceeded, "guest count exceeds room type capacity", map[string]any{
		DetailRequestedGuests: requested,
		DetailMaxGuests:       maxGuests,
	})
}

func InvalidDateRange(msg string) *Failure {
	return newFailure(http.StatusBadRequest, KindInvalidDateRange, msg, nil)
}

func NoAvailability(msg string) *Failure {
	return newFailure(http.StatusConflict, KindNoAvailability, msg, nil)
}

// PriceMismatch carries both totals so the caller can re-quote.
func PriceMismatch(expected, declared float64) *Failure {
	return newFailure(http.StatusConflict, KindPriceMismatch, "declared total does not match computed price", map[string]any{
		DetailExpectedTotal: expected,
		DetailDeclaredTotal: declared,
	})
}

func InvalidStateTransition(msg, current string) *Failure {
	return newFailure(http.StatusConflict, KindInvalidStateTransition, msg, map[string]any{DetailCurrentStatus: current})
}

func ActiveReservationsConflict(msg string, reservationIDs []string) *Failure {
	return newFailure(http.StatusConflict, KindActiveReservationsConflict, msg, map[string]any{DetailReservationIDs: reservationIDs})
}

func PaymentNotCaptured(reference string) *Failure {
	return newFailure(http.StatusPaymentRequired, KindPaymentNotCaptured, "payment has not been captured", map[string]any{DetailPaymentRef: reference})
}

// PaymentReferenceUsed means another reservation already stands on this payment.
func PaymentReferenceUsed(reference string) *Failure {
	return newFailure(http.StatusConflict, KindConflict, "payment reference is already used by another reservation", map[string]any{DetailPaymentRef: reference})
}

func as(err error) (*Failure, bool) {
	var fail *Failure
	ok := errors.As(err, &fail)

	return fail, ok
}

// GetCode is the HTTP status of err; anything that is not a Failure is a 500.
func GetCode(err error) int {
	if fail, ok := as(err); ok {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind is the Kind of err, or KindInternal for anything else.
func GetKind(err error) Kind {
	if fail, ok := as(err); ok && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	fail, ok := as(err)

	return ok && fail.Kind == kind
}

// Is reports whether err wraps a Failure at all.
func Is(err error) bool {
	_, ok := as(err)

	return ok
}
