package dto

import (
	"time"

	guestModel "hotel/internal/domains/guest/model"
	"hotel/internal/domains/reservation/model"
	"hotel/internal/domains/reservation/pricing"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
)

// ParseDay reads a YYYY-MM-DD calendar date as midnight UTC.
func ParseDay(value string) (time.Time, error) {
	day, err := time.Parse(constant.DayFormat, value)
	if err != nil {
		return time.Time{}, err //nolint:wrapcheck
	}

	return day, nil
}

func FormatDay(day time.Time) string {
	return day.Format(constant.DayFormat)
}

type StayRequest struct {
	CheckIn  string `json:"check_in"  validate:"required,date"`
	CheckOut string `json:"check_out" validate:"required,date"`
}

// Dates returns the parsed stay bounds. Callers validate the struct first.
func (s StayRequest) Dates() (checkIn, checkOut time.Time, err error) {
	if checkIn, err = ParseDay(s.CheckIn); err != nil {
		return checkIn, checkOut, err
	}

	checkOut, err = ParseDay(s.CheckOut)

	return checkIn, checkOut, err
}

type AvailabilityResponse struct {
	RoomTypeID string   `json:"room_type_id"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	Nights     int      `json:"nights"`
	Available  int      `json:"available"`
	RoomIDs    []string `json:"room_ids"`
}

type QuoteRequest struct {
	RoomTypeID       string `json:"room_type_id"      validate:"required,uuid"`
	Guests           int    `json:"guests"            validate:"required,gt=0"`
	IncludeBreakfast bool   `json:"include_breakfast"`
	IncludeSpa       bool   `json:"include_spa"`
	StayRequest
}

type QuoteResponse struct {
	RoomTypeID string  `json:"room_type_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Nights     int     `json:"nights"`
	Guests     int     `json:"guests"`
	Room       float64 `json:"room"`
	Breakfast  float64 `json:"breakfast"`
	Spa        float64 `json:"spa"`
	Total      float64 `json:"total"`
	Available  bool    `json:"available"`
}

func (q *QuoteResponse) FromBreakdown(breakdown pricing.Breakdown) {
	q.Nights = breakdown.Nights
	q.Room = breakdown.Room
	q.Breakfast = breakdown.Breakfast
	q.Spa = breakdown.Spa
	q.Total = breakdown.Total
}

type GuestRequest struct {
	Name  string `json:"name"  validate:"required,max=100"`
	DNI   string `json:"dni"   validate:"required,dni"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

func (g *GuestRequest) ToModel(user string, now time.Time) guestModel.Guest {
	return guestModel.Guest{
		ID:    uuid.NewString(),
		Name:  g.Name,
		DNI:   g.DNI,
		Email: g.Email,
		Phone: g.Phone,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// CreateReservationRequest is the booking payload. The first guest is the titular one.
type CreateReservationRequest struct {
	RoomTypeID       string         `json:"room_type_id"      validate:"required,uuid"`
	Guests           []GuestRequest `json:"guests"            validate:"required,unique=DNI,dive"`
	IncludeBreakfast bool           `json:"include_breakfast"`
	IncludeSpa       bool           `json:"include_spa"`
	ClientTotal      *float64       `json:"client_total"      validate:"omitempty,gte=0"`
	PaymentReference string         `json:"payment_reference" validate:"required,max=100"`
	StayRequest
}

// RepeatedDNI returns the first dni listed for more than one guest.
func (c *CreateReservationRequest) RepeatedDNI() (string, bool) {
	seen := make(map[string]bool, len(c.Guests))

	for _, guest := range c.Guests {
		if seen[guest.DNI] {
			return guest.DNI, true
		}

		seen[guest.DNI] = true
	}

	return "", false
}

type NewReservation struct {
	ID         string
	RoomID     string
	RoomTypeID string
	UserID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Total      float64
	Now        time.Time
}

func (c *CreateReservationRequest) ToModel(in NewReservation) model.Reservation {
	return model.Reservation{
		ID:                in.ID,
		RoomID:            in.RoomID,
		RoomTypeID:        in.RoomTypeID,
		UserID:            in.UserID,
		CheckInDate:       in.CheckIn,
		CheckOutDate:      in.CheckOut,
		Status:            model.StatusPending,
		TotalPrice:        in.Total,
		DepositPaid:       in.Total,
		IncludesBreakfast: c.IncludeBreakfast,
		IncludesSpa:       c.IncludeSpa,
		PaymentReference:  c.PaymentReference,
		Metadata: gModel.Metadata{
			CreatedAt:  in.Now,
			ModifiedAt: in.Now,
			CreatedBy:  in.UserID,
			ModifiedBy: in.UserID,
		},
	}
}

type GuestResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	DNI   string `json:"dni"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (g *GuestResponse) FromModel(model guestModel.Guest) {
	g.ID = model.ID
	g.Name = model.Name
	g.DNI = model.DNI
	g.Email = model.Email
	g.Phone = model.Phone
}

type ReservationResponse struct {
	ID                string          `json:"id"`
	RoomID            string          `json:"room_id"`
	RoomTypeID        string          `json:"room_type_id"`
	UserID            string          `json:"user_id"`
	CheckIn           string          `json:"check_in"`
	CheckOut          string          `json:"check_out"`
	Status            model.Status    `json:"status"`
	TotalPrice        float64         `json:"total_price"`
	DepositPaid       float64         `json:"deposit_paid"`
	IncludesBreakfast bool            `json:"includes_breakfast"`
	IncludesSpa       bool            `json:"includes_spa"`
	PaymentReference  string          `json:"payment_reference"`
	CancelledAt       *string         `json:"cancelled_at"`
	Guests            []GuestResponse `json:"guests,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation, guests []guestModel.Guest) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RoomTypeID = model.RoomTypeID
	r.UserID = model.UserID
	r.CheckIn = FormatDay(model.CheckInDate)
	r.CheckOut = FormatDay(model.CheckOutDate)
	r.Status = model.Status
	r.TotalPrice = model.TotalPrice
	r.DepositPaid = model.DepositPaid
	r.IncludesBreakfast = model.IncludesBreakfast
	r.IncludesSpa = model.IncludesSpa
	r.PaymentReference = model.PaymentReference
	r.CancelledAt = nil

	if model.CancelledAt != nil {
		cancelledAt := timezone.Format(*model.CancelledAt, constant.DateFormat)
		r.CancelledAt = &cancelledAt
	}

	r.Guests = nil

	if len(guests) > 0 {
		r.Guests = make([]GuestResponse, len(guests))
		for i, guest := range guests {
			r.Guests[i].FromModel(guest)
		}
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod, nil)
	}
}

// ReservationFilter narrows listings; every field is optional.
type ReservationFilter struct {
	Status   string `validate:"omitempty,oneof=pending confirmed finalized cancelled"`
	RoomID   string `validate:"omitempty,max=20"`
	UserID   string `validate:"omitempty,max=100"`
	FromDate string `validate:"omitempty,date"`
	ToDate   string `validate:"omitempty,date"`
}

// ToFilterGroup turns the filter into AND-ed conditions. FromDate/ToDate keep
// stays that touch or overlap the closed range [FromDate, ToDate].
func (f ReservationFilter) ToFilterGroup() gDto.FilterGroup {
	group := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}

	add := func(field, operator string, value any) {
		group.Filters = append(group.Filters, gDto.Filter{
			Field:    field,
			Value:    value,
			Operator: operator,
			Table:    model.TableName,
		})
	}

	if f.Status != constant.Empty {
		add(model.FieldStatus, gDto.FilterOperatorEq, f.Status)
	}

	if f.RoomID != constant.Empty {
		add(model.FieldRoomID, gDto.FilterOperatorEq, f.RoomID)
	}

	if f.UserID != constant.Empty {
		add(model.FieldUserID, gDto.FilterOperatorEq, f.UserID)
	}

	if f.FromDate != constant.Empty {
		group.Filters = append(group.Filters, gDto.Filter{
			ArgName:  "from_date",
			Field:    model.FieldCheckOutDate,
			Value:    f.FromDate,
			Operator: gDto.FilterOperatorGreaterEq,
			Table:    model.TableName,
		})
	}

	if f.ToDate != constant.Empty {
		group.Filters = append(group.Filters, gDto.Filter{
			ArgName:  "to_date",
			Field:    model.FieldCheckInDate,
			Value:    f.ToDate,
			Operator: gDto.FilterOperatorLessEq,
			Table:    model.TableName,
		})
	}

	return group
}
