package payment

//go:generate go run go.uber.org/mock/mockgen -source=./payment.go -destination=./mocks/payment_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"hotel/config"
	"hotel/infras/otel"
	"hotel/shared/constant"
	"hotel/shared/metrics"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	breakerName   = "payment-gateway"
	statusCapture = "captured"
)

var (
	ErrNotConfigured = errors.New("payment gateway is not configured")
	ErrUnavailable   = errors.New("payment gateway unavailable")
)

// Gateway reports whether the funds behind a payment reference were captured.
type Gateway interface {
	Captured(ctx context.Context, reference string) (bool, error)
}

type paymentStatus struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type gatewayImpl struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[bool]
	otel    otel.Otel
}

func New(cfg *config.Config, otl otel.Otel) Gateway {
	paymentCfg := cfg.External.Payment

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Duration(paymentCfg.Breaker.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(paymentCfg.Breaker.OpenSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= max(paymentCfg.Breaker.MaxFailures, 1)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("payment circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &gatewayImpl{
		baseURL: paymentCfg.BaseURL,
		apiKey:  paymentCfg.APIKey,
		client:  &http.Client{Timeout: time.Duration(max(paymentCfg.TimeoutSeconds, 1)) * time.Second},
		breaker: breaker,
		otel:    otl,
	}
}

func (g *gatewayImpl) Captured(ctx context.Context, reference string) (captured bool, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".payment.Captured")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("payment.reference", reference)

	if g.baseURL == "" {
		return false, ErrNotConfigured
	}

	captured, err = g.breaker.Execute(func() (bool, error) {
		return g.fetch(ctx, reference)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Warn().Err(err).Str("reference", reference).Msg("payment gateway call rejected by circuit breaker")

			return false, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		return false, err
	}

	return captured, nil
}

// fetch returns an error only for transport or server failures; an unknown
// reference is a definitive "not captured".
func (g *gatewayImpl) fetch(ctx context.Context, reference string) (bool, error) {
	endpoint, err := url.JoinPath(g.baseURL, "payments", url.PathEscape(reference))
	if err != nil {
		return false, fmt.Errorf("failed to build payment url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build payment request: %w", err)
	}

	req.Header.Set("Accept", constant.ContentTypeJSON)

	if g.apiKey != "" {
		req.Header.Set(constant.RequestHeaderAPIKey, g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("reference", reference).Msg("failed to reach payment gateway")

		return false, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return false, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, nil
	}

	var status paymentStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("failed to decode payment status: %w", err)
	}

	return status.Status == statusCapture, nil
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2 //nolint:mnd
	default:
		return 0
	}
}
