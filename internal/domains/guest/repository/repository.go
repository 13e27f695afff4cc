package repository

import (
	"context"
	"fmt"

	"hotel/infras/otel"
	"hotel/internal/domains/guest/model"
	"hotel/shared/constant"
	"hotel/shared/logger"

	"github.com/jmoiron/sqlx"
)

// The no-op update on conflict makes RETURNING yield the existing id while
// leaving the stored guest untouched.
const (
	upsertQuery = `INSERT INTO guests (id, name, dni, email, phone, created_at, modified_at, created_by, modified_by)
VALUES (:id, :name, :dni, :email, :phone, :created_at, :modified_at, :created_by, :modified_by)
ON CONFLICT (dni) DO UPDATE SET dni = EXCLUDED.dni
RETURNING id`

	listByReservationQuery = `SELECT g.id, g.name, g.dni, g.email, g.phone, g.created_at, g.modified_at, g.created_by, g.modified_by
FROM guests g
JOIN reservation_guests rg ON rg.guest_id = g.id
WHERE rg.reservation_id = $1
ORDER BY rg.position`
)

type Guest interface {
	UpsertTx(ctx context.Context, sqltx *sqlx.Tx, guest model.Guest) (string, error)
	ListByReservation(ctx context.Context, queryer sqlx.QueryerContext, reservationID string) ([]model.Guest, error)
}

type repositoryImpl struct {
	otel otel.Otel
}

func New(otel otel.Otel) Guest {
	return &repositoryImpl{otel: otel}
}

// UpsertTx connects to the guest with the same dni or creates it, returning its id.
func (r *repositoryImpl) UpsertTx(ctx context.Context, sqltx *sqlx.Tx, guest model.Guest) (string, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".guest.UpsertTx")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, upsertQuery)

	query, args, err := sqltx.BindNamed(upsertQuery, guest)
	if err != nil {
		scope.TraceError(err)

		return "", fmt.Errorf("failed to bind guest upsert: %w", err)
	}

	var id string
	if err := sqltx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return "", fmt.Errorf("failed to upsert guest: %w", err)
	}

	return id, nil
}

func (r *repositoryImpl) ListByReservation(ctx context.Context, queryer sqlx.QueryerContext, reservationID string) ([]model.Guest, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".guest.ListByReservation")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, listByReservationQuery)

	var guests []model.Guest
	if err := sqlx.SelectContext(ctx, queryer, &guests, listByReservationQuery, reservationID); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to list reservation guests: %w", err)
	}

	return guests, nil
}
