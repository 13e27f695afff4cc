package model

import "hotel/shared/model"

const (
	TableName  = "room_types"
	EntityName = "room_type"

	FieldID                = "id"
	FieldName              = "name"
	FieldBasePrice         = "base_price"
	FieldMaxGuests         = "max_guests"
	FieldIncludesBreakfast = "includes_breakfast"
	FieldIncludesSpa       = "includes_spa"
	FieldIsActive          = "is_active"
)

type RoomType struct {
	ID                string  `db:"id"`
	Name              string  `db:"name"`
	Description       string  `db:"description"`
	BasePrice         float64 `db:"base_price"`
	MaxGuests         int     `db:"max_guests"`
	IncludesBreakfast bool    `db:"includes_breakfast"`
	IncludesSpa       bool    `db:"includes_spa"`
	IsActive          bool    `db:"is_active"`
	model.Metadata
}

// Bookable reports whether new reservations may target the type.
func (r RoomType) Bookable() bool {
	return r.ID != "" && r.IsActive
}

// AcceptsGuests reports whether count is within [1, MaxGuests].
func (r RoomType) AcceptsGuests(count int) bool {
	return count >= 1 && count <= r.MaxGuests
}
