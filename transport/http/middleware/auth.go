package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"hotel/config"
	"hotel/infras/jwt"
	"hotel/infras/otel"
	"hotel/permissions"
	"hotel/shared/constant"
	"hotel/shared/failure"
	"hotel/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const serviceUserPrefix = "service:"

// serviceCaller marks requests already authenticated by API key.
type serviceCaller struct{}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole is mounted on /v1 in the order APIKey, Auth, RBAC.
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// routeOf resolves the chi pattern the request will hit, e.g. /v1/rooms/{id}.
func routeOf(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
}

func isServiceCaller(ctx context.Context) bool {
	trusted, _ := ctx.Value(serviceCaller{}).(bool)

	return trusted
}

func (m *authRoleImpl) lookup(request *http.Request) permissions.Permission {
	if m.permission == nil {
		return permissions.Permission{}
	}

	return m.permission.FindPermissions(routeOf(request), request.Method)
}

// APIKey lets internal services in with X-API-Key. They act as
// "service:<APP_NAME>" with the manager role and skip the token check.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		presented := request.Header.Get(constant.RequestHeaderAPIKey)
		if presented == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		expected := m.cfg.App.APIKey
		if expected == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		ctx = context.WithValue(request.Context(), serviceCaller{}, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, serviceUserPrefix+m.cfg.App.Name)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleManager)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Auth validates the bearer access token and puts the caller in the context.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()

		if isServiceCaller(ctx) || m.lookup(request).Skip {
			next.ServeHTTP(writer, request)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		reject := func(message string) {
			err := failure.Unauthorized(message)
			scope.TraceError(err)
			response.WithError(writer, err)
		}

		header := request.Header.Get(constant.RequestHeaderAuthorization)
		if header == "" {
			reject("Missing authorization header")

			return
		}

		token, err := jwt.ExtractTokenFromHeader(header)
		if err != nil {
			reject("Invalid authorization header format")

			return
		}

		claims, err := m.jwtService.ValidateToken(token, jwt.AccessToken)
		if err != nil {
			reject(tokenProblem(err))

			return
		}

		if claims.Role == "" {
			log.Warn().Str("user", claims.UserID).Msg("Access token without role")
			reject("Invalid token claims")

			return
		}

		scope.SetAttributes(map[string]any{"user.id": claims.UserID, "user.role": claims.Role})

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func tokenProblem(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, jwt.ErrInvalidClaim):
		return "Invalid token claims"
	default:
		return "Invalid token"
	}
}

// RBAC checks the caller's role against permissions.json. Routes missing from
// the table are denied.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if isServiceCaller(ctx) || (m.permission != nil && m.permission.Skip) {
			next.ServeHTTP(writer, request)

			return
		}

		if m.permission == nil {
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		permission := m.lookup(request)
		if permission.Skip {
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if permission.Path == "" || !permission.Allows(role) {
			scope.SetAttributes(map[string]any{
				"user.role":     role,
				"allowed_roles": permission.Permissions,
			})
			scope.TraceError(failure.ForbiddenError)
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(writer, request)
	})
}
