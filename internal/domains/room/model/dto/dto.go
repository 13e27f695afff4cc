package dto

import (
	"time"

	"hotel/internal/domains/room/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
)

type CreateRoomRequest struct {
	ID         string       `json:"id"           validate:"required,alphanum,max=20"`
	Floor      int          `json:"floor"        validate:"min=0"`
	RoomTypeID string       `json:"room_type_id" validate:"required,uuid"`
	Status     model.Status `json:"status"       validate:"omitempty,oneof=available occupied maintenance cleaning"`
}

func (c *CreateRoomRequest) ToModel(user string, now time.Time) model.Room {
	status := c.Status
	if status == constant.Empty {
		status = model.StatusAvailable
	}

	return model.Room{
		ID:         c.ID,
		Floor:      c.Floor,
		RoomTypeID: c.RoomTypeID,
		Status:     status,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// SetStatusRequest changes the operational tag of a room. Force confirms that
// moving to maintenance may cancel the room's active reservations.
type SetStatusRequest struct {
	Status model.Status `json:"status" validate:"required,oneof=available occupied maintenance cleaning"`
	Force  bool         `json:"force"`
}

type RoomResponse struct {
	ID         string       `json:"id"`
	Floor      int          `json:"floor"`
	RoomTypeID string       `json:"room_type_id"`
	Status     model.Status `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Floor = model.Floor
	r.RoomTypeID = model.RoomTypeID
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

// StatusChangeResponse reports the room after the change and the reservations
// the maintenance cascade cancelled, if any.
type StatusChangeResponse struct {
	Room                  RoomResponse `json:"room"`
	CancelledReservations []string     `json:"cancelled_reservations"`
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

type RoomFilter struct {
	RoomTypeID string `validate:"omitempty,uuid"`
	Status     string `validate:"omitempty,oneof=available occupied maintenance cleaning"`
	Floor      *int   `validate:"omitempty,min=0"`
}

func (f RoomFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	add := func(field string, value any) {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    field,
			Value:    value,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	if f.RoomTypeID != constant.Empty {
		add(model.FieldRoomTypeID, f.RoomTypeID)
	}

	if f.Status != constant.Empty {
		add(model.FieldStatus, f.Status)
	}

	if f.Floor != nil {
		add(model.FieldFloor, *f.Floor)
	}

	return group
}
