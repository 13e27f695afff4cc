package router_test

import (
	"net/http"
	"testing"

	"hotel/config"
	"hotel/infras/jwt"
	"hotel/infras/otel/mocks"
	"hotel/internal/handlers/reservation"
	"hotel/internal/handlers/room"
	"hotel/internal/handlers/roomtype"
	"hotel/permissions"
	"hotel/transport/http/middleware"
	"hotel/transport/http/router"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every route must carry an explicit role list, otherwise RBAC lets any
// authenticated caller through.
func TestEveryRouteHasPermissions(t *testing.T) {
	otel := mocks.NewOtel()
	cfg := &config.Config{}
	perms := permissions.Get()
	require.NotNil(t, perms)

	r := router.New(router.DomainHandlers{
		RoomType:    roomtype.New(nil, nil, otel),
		Room:        room.New(nil, otel),
		Reservation: reservation.New(nil, otel),
	}, middleware.NewAuthRoleMiddleware(jwt.New(cfg), otel, perms, cfg))

	mux := chi.NewRouter()
	r.SetupRoutes(mux)

	routes := 0

	err := chi.Walk(mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes++

		permission := perms.FindPermissions(route, method)
		assert.NotEmpty(t, permission.Permissions, "%s %s has no permissions entry", method, route)

		return nil
	})

	require.NoError(t, err)
	assert.Len(t, perms.Endpoints, routes, "permissions.json lists routes that are not registered")
}
