package postgres

//nolint:revive
import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"hotel/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const driverName = "postgres"

var ErrNotConnected = errors.New("database connection not established")

// Connection splits reads from the write primary. Allocation and every other
// locking statement runs on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  MustConnect(cfg, "read", cfg.DB.Postgres.Read),
		Write: MustConnect(cfg, "write", cfg.DB.Postgres.Write),
	}
}

func (c *Connection) Ping(ctx context.Context) error {
	if c.Write == nil || c.Read == nil {
		return ErrNotConnected
	}

	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write connection: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read connection: %w", err)
	}

	return nil
}

func (c *Connection) Close() {
	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connection")
		}
	}
}

// URL is the connection URL of one endpoint with DB_POSTGRES_PREFIX applied
// to the database name.
func URL(endpoint config.PostgresEndpoint, prefix string) *url.URL {
	query := url.Values{}
	query.Set("sslmode", endpoint.SSLMode)

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	return &url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + prefix + endpoint.Name,
		RawQuery: query.Encode(),
	}
}

// MustConnect retries DB_POSTGRES_MAX_RETRY times and stops the process when
// the endpoint never answers.
func MustConnect(cfg *config.Config, name string, endpoint config.PostgresEndpoint) *sqlx.DB {
	pg := cfg.DB.Postgres
	dsn := URL(endpoint, pg.Prefix).String()
	attempts := max(pg.MaxRetry, 1)

	logger := log.With().
		Str("name", name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", pg.Prefix+endpoint.Name).
		Logger()

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxOpenConns(pg.MaxOpenConns)
			db.SetMaxIdleConns(pg.MaxIdleConns)
			db.SetConnMaxLifetime(time.Duration(pg.ConnMaxLifetime) * time.Second)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Int("of", attempts).Msg("Failed connecting to database")

		if attempt < attempts {
			time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
		}
	}

	logger.Fatal().Err(err).Msg("Giving up on database")

	return nil
}
