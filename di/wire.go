//go:build wireinject
// +build wireinject

package di

import (
	"hotel/config"
	"hotel/infras/jwt"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/infras/payment"
	"hotel/infras/postgres"
	"hotel/infras/redis"
	"hotel/permissions"
	"hotel/shared/cache"
	"hotel/transport/http"
	"hotel/transport/http/middleware"
	"hotel/transport/http/router"
	"hotel/transport/worker"

	guestRepository "hotel/internal/domains/guest/repository"
	reservationEvent "hotel/internal/domains/reservation/event"
	reservationRepository "hotel/internal/domains/reservation/repository"
	reservationService "hotel/internal/domains/reservation/service"
	roomRepository "hotel/internal/domains/room/repository"
	roomService "hotel/internal/domains/room/service"
	roomTypeRepository "hotel/internal/domains/roomtype/repository"
	roomTypeService "hotel/internal/domains/roomtype/service"

	reservationHandler "hotel/internal/handlers/reservation"
	roomHandler "hotel/internal/handlers/room"
	roomTypeHandler "hotel/internal/handlers/roomtype"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	payment.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomTypeDomain = wire.NewSet(
	roomTypeRepository.New,
	roomTypeService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var reservationDomain = wire.NewSet(
	guestRepository.New,
	reservationRepository.New,
	reservationRepository.NewStore,
	reservationEvent.NewPublisher,
	reservationService.New,
)

var domains = wire.NewSet(
	roomTypeDomain,
	roomDomain,
	reservationDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomTypeHandler.New,
	roomHandler.New,
	reservationHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeSweeper() *worker.Sweeper {
	wire.Build(
		configurations,
		infrastructures,
		reservationDomain,
		roomRepository.New,
		worker.NewSweeper,
	)

	return &worker.Sweeper{}
}
