package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"hotel/config"
	"hotel/infras/otel/mocks"
	"hotel/infras/payment"

	"github.com/stretchr/testify/assert"
)

func newGateway(baseURL string, maxFailures uint32) payment.Gateway {
	cfg := &config.Config{}
	cfg.External.Payment.BaseURL = baseURL
	cfg.External.Payment.APIKey = "secret"
	cfg.External.Payment.TimeoutSeconds = 2
	cfg.External.Payment.Breaker.MaxFailures = maxFailures
	cfg.External.Payment.Breaker.OpenSeconds = 60
	cfg.External.Payment.Breaker.IntervalSeconds = 60

	return payment.New(cfg, mocks.NewOtel())
}

func TestGateway_Captured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		switch r.URL.Path {
		case "/payments/pay_ok":
			_, _ = w.Write([]byte(`{"reference":"pay_ok","status":"captured"}`))
		case "/payments/pay_pending":
			_, _ = w.Write([]byte(`{"reference":"pay_pending","status":"authorized"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	gateway := newGateway(server.URL, 3)

	tests := []struct {
		name      string
		reference string
		want      bool
	}{
		{name: "captured payment", reference: "pay_ok", want: true},
		{name: "authorized but not captured", reference: "pay_pending", want: false},
		{name: "unknown reference", reference: "pay_missing", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gateway.Captured(context.Background(), tt.reference)

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGateway_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := newGateway(server.URL, 2)

	for range 2 {
		_, err := gateway.Captured(context.Background(), "pay_1")
		assert.ErrorIs(t, err, payment.ErrUnavailable)
	}

	_, err := gateway.Captured(context.Background(), "pay_1")
	assert.ErrorIs(t, err, payment.ErrUnavailable)
	assert.Equal(t, int32(2), calls.Load(), "open breaker must not reach the gateway")
}

func TestGateway_NotConfigured(t *testing.T) {
	cfg := &config.Config{}
	recorder := mocks.NewRecorder()
	gateway := payment.New(cfg, recorder)

	captured, err := gateway.Captured(context.Background(), "pay_1")

	assert.False(t, captured)
	assert.ErrorIs(t, err, payment.ErrNotConfigured)

	scope := recorder.Find("external.payment.Captured")
	if assert.NotNil(t, scope) {
		assert.Equal(t, "pay_1", scope.Attributes["payment.reference"])
		assert.Equal(t, []error{payment.ErrNotConfigured}, scope.Errors)
		assert.True(t, scope.Ended)
	}
}
