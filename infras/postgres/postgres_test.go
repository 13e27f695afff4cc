package postgres_test

import (
	"context"
	"testing"

	"hotel/config"
	"hotel/infras/postgres"

	"github.com/stretchr/testify/assert"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint config.PostgresEndpoint
		prefix   string
		want     string
	}{
		{
			name:     "escapes credentials",
			endpoint: config.PostgresEndpoint{Host: "db", Port: "5432", Username: "hotel", Password: "p@ss:w/rd", Name: "hotel", SSLMode: "disable"},
			want:     "postgres://hotel:p%40ss%3Aw%2Frd@db:5432/hotel?sslmode=disable",
		},
		{
			name:     "prefix and session timezone",
			endpoint: config.PostgresEndpoint{Host: "replica", Port: "6432", Username: "ro", Password: "x", Name: "hotel", SSLMode: "require", Timezone: "UTC"},
			prefix:   "staging_",
			want:     "postgres://ro:x@replica:6432/staging_hotel?sslmode=require&timezone=UTC",
		},
		{
			name:     "ipv6 host",
			endpoint: config.PostgresEndpoint{Host: "::1", Port: "5432", Username: "hotel", Password: "x", Name: "hotel", SSLMode: "disable"},
			want:     "postgres://hotel:x@[::1]:5432/hotel?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.URL(tt.endpoint, tt.prefix).String())
		})
	}
}

func TestPing_NotConnected(t *testing.T) {
	conn := &postgres.Connection{}

	assert.ErrorIs(t, conn.Ping(context.Background()), postgres.ErrNotConnected)
}
