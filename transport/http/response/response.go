package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/shared/logger"

	"github.com/rs/zerolog/log"
)

// Data wraps successful payloads: {"data": ...}.
type Data[T any] struct {
	Data T `json:"data"`
}

type Message struct {
	Message string `json:"message"`
}

// Error is the body of every failed request.
type Error struct {
	Error   string         `json:"error"`
	Kind    failure.Kind   `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

func WithJSON(writer http.ResponseWriter, code int, payload any) {
	write(writer, code, Data[any]{Data: payload})
}

func WithMessage(writer http.ResponseWriter, code int, message string) {
	write(writer, code, Message{Message: message})
}

// WithError renders a Failure with its own status. Anything else, and any
// failure mapped to 5xx, is logged with its stack and answered with a generic
// INTERNAL body.
func WithError(writer http.ResponseWriter, err error) {
	var fail *failure.Failure
	if !errors.As(err, &fail) || fail.Code >= http.StatusInternalServerError {
		logger.ErrorWithStack(err)
		write(writer, http.StatusInternalServerError, Error{Error: constant.ResponseErrorInternal, Kind: failure.KindInternal})

		return
	}

	write(writer, fail.Code, Error{Error: fail.Message, Kind: fail.Kind, Details: fail.Details})
}

func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(writer http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)
		writer.WriteHeader(http.StatusInternalServerError)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err := writer.Write(body); err != nil {
		log.Warn().Err(err).Int("status", code).Msg("Failed to write response body")
	}
}
