package event

import (
	"context"
	"fmt"
	"time"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/internal/domains/reservation/model"
	"hotel/shared/constant"
	"hotel/shared/metrics"

	"github.com/rs/zerolog/log"
)

type Type string

const (
	TypeCreated        Type = "reservation.created"
	TypeFinalized      Type = "reservation.finalized"
	TypeCancelled      Type = "reservation.cancelled"
	TypeRefundRequired Type = "reservation.refund_required"
)

const (
	ReasonGuestRequest = "guest_request"
	ReasonMaintenance  = "room_maintenance"
	ReasonExpired      = "pending_expired"
	ReasonNoAvailable  = "no_availability"

	headerEventType = "event-type"
)

// Event is the payload consumers (notification, refunds) receive.
type Event struct {
	Type             Type      `json:"type"`
	ReservationID    string    `json:"reservation_id,omitempty"`
	RoomID           string    `json:"room_id,omitempty"`
	RoomTypeID       string    `json:"room_type_id"`
	UserID           string    `json:"user_id"`
	Status           string    `json:"status,omitempty"`
	CheckIn          string    `json:"check_in"`
	CheckOut         string    `json:"check_out"`
	TotalPrice       float64   `json:"total_price"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	Reason           string    `json:"reason,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// FromReservation fills the event from a stored reservation.
func FromReservation(eventType Type, reservation model.Reservation, reason string, at time.Time) Event {
	return Event{
		Type:             eventType,
		ReservationID:    reservation.ID,
		RoomID:           reservation.RoomID,
		RoomTypeID:       reservation.RoomTypeID,
		UserID:           reservation.UserID,
		Status:           string(reservation.Status),
		CheckIn:          reservation.CheckInDate.Format(constant.DayFormat),
		CheckOut:         reservation.CheckOutDate.Format(constant.DayFormat),
		TotalPrice:       reservation.TotalPrice,
		PaymentReference: reservation.PaymentReference,
		Reason:           reason,
		OccurredAt:       at,
	}
}

func (e Event) key() string {
	if e.ReservationID != constant.Empty {
		return e.ReservationID
	}

	return e.PaymentReference
}

// Publisher hands events to the broker. Callers run it after commit and never
// let its failure affect the committed state.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topics.Reservation,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, events ...Event) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".reservation.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, evt := range events {
		messages[i] = kafka.Message{
			Key:     evt.key(),
			Value:   evt,
			Headers: map[string]string{headerEventType: string(evt.Type)},
		}
	}

	err = p.client.SendMessages(ctx, p.topic, messages...)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}

	for _, evt := range events {
		metrics.EventsPublished.WithLabelValues(string(evt.Type), outcome).Inc()
	}

	if err != nil {
		log.Error().Err(err).Str("topic", p.topic).Int("count", len(events)).Msg("failed to publish reservation events")

		return fmt.Errorf("failed to publish reservation events: %w", err)
	}

	return nil
}
