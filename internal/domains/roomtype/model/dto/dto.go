package dto

import (
	"time"

	"hotel/internal/domains/roomtype/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"

	"github.com/google/uuid"
)

type CreateRoomTypeRequest struct {
	Name              string  `json:"name"               validate:"required,max=100"`
	Description       string  `json:"description"        validate:"omitempty,max=500"`
	BasePrice         float64 `json:"base_price"         validate:"gt=0"`
	MaxGuests         int     `json:"max_guests"         validate:"required,min=1,max=20"`
	IncludesBreakfast bool    `json:"includes_breakfast"`
	IncludesSpa       bool    `json:"includes_spa"`
	IsActive          *bool   `json:"is_active"`
}

func (c *CreateRoomTypeRequest) ToModel(user string, now time.Time) model.RoomType {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}

	return model.RoomType{
		ID:                uuid.NewString(),
		Name:              c.Name,
		Description:       c.Description,
		BasePrice:         shared.RoundMoney(c.BasePrice),
		MaxGuests:         c.MaxGuests,
		IncludesBreakfast: c.IncludesBreakfast,
		IncludesSpa:       c.IncludesSpa,
		IsActive:          active,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateRoomTypeRequest only touches the fields that are set. Pointers let a
// caller switch flags off.
type UpdateRoomTypeRequest struct {
	Name              string   `db:"name"               json:"name"               validate:"omitempty,max=100"`
	Description       string   `db:"description"        json:"description"        validate:"omitempty,max=500"`
	BasePrice         *float64 `db:"base_price"         json:"base_price"         validate:"omitempty,gt=0"`
	MaxGuests         *int     `db:"max_guests"         json:"max_guests"         validate:"omitempty,min=1,max=20"`
	IncludesBreakfast *bool    `db:"includes_breakfast" json:"includes_breakfast"`
	IncludesSpa       *bool    `db:"includes_spa"       json:"includes_spa"`
	IsActive          *bool    `db:"is_active"          json:"is_active"`
}

func (u UpdateRoomTypeRequest) IsEmpty() bool {
	return u == (UpdateRoomTypeRequest{})
}

// Fields returns the columns to update with pointers dereferenced.
func (u UpdateRoomTypeRequest) Fields(user string) map[string]any {
	fields := shared.TransformFields(u, user)

	if u.BasePrice != nil {
		fields[model.FieldBasePrice] = shared.RoundMoney(*u.BasePrice)
	}

	if u.MaxGuests != nil {
		fields[model.FieldMaxGuests] = *u.MaxGuests
	}

	if u.IncludesBreakfast != nil {
		fields[model.FieldIncludesBreakfast] = *u.IncludesBreakfast
	}

	if u.IncludesSpa != nil {
		fields[model.FieldIncludesSpa] = *u.IncludesSpa
	}

	if u.IsActive != nil {
		fields[model.FieldIsActive] = *u.IsActive
	}

	return fields
}

type RoomTypeResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	BasePrice         float64 `json:"base_price"`
	MaxGuests         int     `json:"max_guests"`
	IncludesBreakfast bool    `json:"includes_breakfast"`
	IncludesSpa       bool    `json:"includes_spa"`
	IsActive          bool    `json:"is_active"`
	gDto.Metadata
}

func (r *RoomTypeResponse) FromModel(model model.RoomType) {
	r.ID = model.ID
	r.Name = model.Name
	r.Description = model.Description
	r.BasePrice = model.BasePrice
	r.MaxGuests = model.MaxGuests
	r.IncludesBreakfast = model.IncludesBreakfast
	r.IncludesSpa = model.IncludesSpa
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomTypesResponse struct {
	RoomTypes []RoomTypeResponse `json:"room_types"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetRoomTypesResponse) FromModels(models []model.RoomType, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.RoomTypes = make([]RoomTypeResponse, len(models))
	for i, mod := range models {
		r.RoomTypes[i].FromModel(mod)
	}
}

type RoomTypeFilter struct {
	Name     string `validate:"omitempty,max=100"`
	IsActive *bool
}

func (f RoomTypeFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	if f.Name != constant.Empty {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    model.FieldName,
			Value:    f.Name,
			Operator: gDto.FilterOperatorLike,
			Table:    model.TableName,
		})
	}

	if f.IsActive != nil {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    model.FieldIsActive,
			Value:    *f.IsActive,
			Operator: gDto.FilterOperatorEq,
			Table:    model.TableName,
		})
	}

	return group
}
