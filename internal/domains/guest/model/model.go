package model

import "hotel/shared/model"

const (
	TableName  = "guests"
	EntityName = "guest"

	FieldID  = "id"
	FieldDNI = "dni"
)

// Guest is keyed by its national id or passport number and shared across reservations.
type Guest struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	DNI   string `db:"dni"`
	Email string `db:"email"`
	Phone string `db:"phone"`
	model.Metadata
}
