package model

import "hotel/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID         = "id"
	FieldFloor      = "floor"
	FieldRoomTypeID = "room_type_id"
	FieldStatus     = "status"
)

// Status is the operational tag of a physical room. It never decides booking occupancy.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
	StatusCleaning    Status = "cleaning"
)

// Statuses lists every valid status, in display order.
func Statuses() []Status {
	return []Status{StatusAvailable, StatusOccupied, StatusMaintenance, StatusCleaning}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusMaintenance, StatusCleaning:
		return true
	default:
		return false
	}
}

// IsEligible reports whether a room in this status may receive a new booking.
func (s Status) IsEligible() bool {
	return s == StatusAvailable || s == StatusCleaning
}

type Room struct {
	ID         string `db:"id"`
	Floor      int    `db:"floor"`
	RoomTypeID string `db:"room_type_id"`
	Status     Status `db:"status"`
	model.Metadata
}
