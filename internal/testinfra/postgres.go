//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"hotel/config"
	"hotel/helper"
	"hotel/infras/postgres"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultPostgresImage = "postgres:16-alpine"
	DefaultPostgresPort  = "5432/tcp"

	postgresUser     = "hotel"
	postgresPassword = "hotel"
	postgresDB       = "hotel"
)

// SkipIfNoDocker skips t when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// PostgresContainer is a migrated hotel database. Config points both sides of
// the read/write split at it.
type PostgresContainer struct {
	testcontainers.Container
	Config *config.Config
	Conn   *postgres.Connection
}

type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	startTimeout time.Duration
}

func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

func WithPostgresStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer starts Postgres, applies every migration and connects.
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		startTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.image,
			ExposedPorts: []string{DefaultPostgresPort},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresPassword,
				"POSTGRES_DB":       postgresDB,
				"TZ":                "UTC",
			},
			// the init scripts restart the server once, so the line shows up twice
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort(DefaultPostgresPort),
			).WithStartupTimeout(cfg.startTimeout),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck

		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultPostgresPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck

		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	appCfg := &config.Config{}
	appCfg.DB.Postgres.MaxRetry = 3
	appCfg.DB.Postgres.RetryWaitTime = 1
	appCfg.DB.Postgres.MaxOpenConns = 20
	appCfg.DB.Postgres.MaxIdleConns = 20
	appCfg.DB.Postgres.ConnMaxLifetime = 300
	appCfg.DB.Postgres.MigrationSource = "file://" + migrationsDir()
	appCfg.DB.Postgres.Write = config.PostgresEndpoint{
		Host:     host,
		Port:     port.Port(),
		Username: postgresUser,
		Password: postgresPassword,
		Name:     postgresDB,
		SSLMode:  "disable",
	}
	appCfg.DB.Postgres.Read = appCfg.DB.Postgres.Write

	if err := helper.Run(appCfg, helper.ActionUp); err != nil {
		container.Terminate(ctx) //nolint:errcheck

		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		Config:    appCfg,
		Conn:      postgres.New(appCfg),
	}, nil
}

// Terminate closes the pool before stopping the container.
func (p *PostgresContainer) Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error {
	p.Conn.Close()

	return p.Container.Terminate(ctx, opts...)
}

// Reset empties every table so tests sharing one container start clean.
func (p *PostgresContainer) Reset(ctx context.Context) error {
	_, err := p.Conn.Write.ExecContext(ctx,
		`TRUNCATE reservation_guests, reservations, guests, rooms, room_types RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}

	return nil
}

// CleanupContainer terminates container and only logs a failure.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()

	if container == nil {
		return
	}

	if err := container.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)

	return filepath.Join(filepath.Dir(file), "..", "..", "migrations", "postgres")
}
