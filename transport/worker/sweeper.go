package worker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/postgres"
	"hotel/internal/domains/reservation/service"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically cancels pending reservations that were never checked in
// and are older than the configured TTL.
type Sweeper struct {
	Config       *config.Config
	Reservations service.Reservation
	DB           *postgres.Connection
	Broker       kafka.Client
}

func NewSweeper(cfg *config.Config, reservations service.Reservation, db *postgres.Connection, broker kafka.Client) *Sweeper {
	return &Sweeper{
		Config:       cfg,
		Reservations: reservations,
		DB:           db,
		Broker:       broker,
	}
}

func (s *Sweeper) interval() time.Duration {
	return time.Duration(max(s.Config.Sweeper.IntervalSeconds, 1)) * time.Second
}

func (s *Sweeper) ttl() time.Duration {
	return time.Duration(max(s.Config.Booking.PendingTTLMinutes, 1)) * time.Minute
}

// Serve runs until SIGINT or SIGTERM, then releases the broker and database.
func (s *Sweeper) Serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Run(ctx)
	s.cleanup()
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval()).Dur("ttl", s.ttl()).Msg("Starting pending reservation sweeper.")

	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	for {
		s.Sweep(ctx)

		select {
		case <-ctx.Done():
			log.Info().Msg("Sweeper stopped.")

			return
		case <-ticker.C:
		}
	}
}

// Sweep runs a single pass. Failures are logged and retried on the next tick.
func (s *Sweeper) Sweep(ctx context.Context) int {
	expired, err := s.Reservations.ExpireStale(ctx, s.ttl())
	if err != nil {
		log.Error().Err(err).Int("expired", expired).Msg("Sweep failed")

		return expired
	}

	if expired > 0 {
		log.Info().Int("expired", expired).Msg("Expired stale pending reservations")
	}

	return expired
}

func (s *Sweeper) cleanup() {
	if s.Broker != nil {
		if err := s.Broker.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	}

	if s.DB != nil {
		s.DB.Close()
	}
}
