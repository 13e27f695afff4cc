package dto_test

import (
	"testing"

	"hotel/shared/dto"

	"github.com/stretchr/testify/assert"
)

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equality on a qualified column",
			filter:    dto.Filter{Field: "status", Value: "pending", Operator: dto.FilterOperatorEq, Table: "reservations"},
			wantWhere: "reservations.status = :status",
			wantArgs:  map[string]any{"status": "pending"},
		},
		{
			name:      "explicit argument name",
			filter:    dto.Filter{ArgName: "to_date", Field: "check_in_date", Value: "2025-06-03", Operator: dto.FilterOperatorLessEq},
			wantWhere: "check_in_date <= :to_date",
			wantArgs:  map[string]any{"to_date": "2025-06-03"},
		},
		{
			name:      "strict comparison",
			filter:    dto.Filter{Field: "check_out_date", Value: "2025-06-01", Operator: dto.FilterOperatorGreater},
			wantWhere: "check_out_date > :check_out_date",
			wantArgs:  map[string]any{"check_out_date": "2025-06-01"},
		},
		{
			name:      "like escapes wildcards",
			filter:    dto.Filter{Field: "name", Value: "50%_off", Operator: dto.FilterOperatorLike},
			wantWhere: "LOWER(name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": `%50\%\_off%`},
		},
		{
			name:      "in expands the slice",
			filter:    dto.Filter{Field: "status", Value: []string{"pending", "confirmed"}, Operator: dto.FilterOperatorIn},
			wantWhere: "status IN (:status_0, :status_1)",
			wantArgs:  map[string]any{"status_0": "pending", "status_1": "confirmed"},
		},
		{
			name:      "empty in matches nothing",
			filter:    dto.Filter{Field: "status", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "in requires a slice",
			filter:    dto.Filter{Field: "status", Value: "pending'); DROP TABLE rooms; --", Operator: dto.FilterOperatorIn},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
		{
			name:      "null check",
			filter:    dto.Filter{Field: "cancelled_at", Operator: dto.FilterIsNull, Table: "reservations"},
			wantWhere: "reservations.cancelled_at IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "status", Value: "x", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: "room_type_id", Value: "suite", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "status", Value: "x", Operator: "between"},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "floor", Value: 1, Operator: dto.FilterOperatorEq},
					dto.Filter{ArgName: "top", Field: "floor", Value: 9, Operator: dto.FilterOperatorGreaterEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(room_type_id = :room_type_id AND (floor = :floor OR floor >= :top))", where)
	assert.Equal(t, map[string]any{"room_type_id": "suite", "floor": 1, "top": 9}, args)

	empty := dto.FilterGroup{}
	where, args = empty.GetWhereClause()
	assert.Empty(t, where)
	assert.Empty(t, args)
}
