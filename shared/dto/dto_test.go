package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"hotel/shared/constant"
	"hotel/shared/dto"
	"hotel/shared/model"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2025, 5, 30, 8, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)

	var touched dto.Metadata
	touched.FromModel(model.Metadata{CreatedAt: createdAt, CreatedBy: "front-desk", ModifiedAt: modifiedAt, ModifiedBy: "manager"})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  createdAt.Format(constant.DateFormat),
		CreatedBy:  "front-desk",
		ModifiedAt: modifiedAt.Format(constant.DateFormat),
		ModifiedBy: "manager",
	}, touched)

	var fresh dto.Metadata
	fresh.FromModel(model.Metadata{CreatedAt: createdAt, CreatedBy: "front-desk"})

	assert.Empty(t, fresh.ModifiedAt, "never-modified rows omit modified_at")
	assert.Empty(t, fresh.ModifiedBy)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		defaults bool
		want     dto.QueryParams
	}{
		{
			name:  "all parameters",
			query: "page=2&limit=20&sort_by=check_in_date&sort_dir=desc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "check_in_date", SortDir: dto.SortDirDesc},
		},
		{
			name:     "defaults fill missing paging",
			defaults: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name: "no defaults leaves paging off",
			want: dto.QueryParams{},
		},
		{
			name:     "malformed and non-positive numbers are ignored",
			query:    "page=first&limit=-5",
			defaults: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: constant.DefaultValueLimit},
		},
		{
			name:     "zero page falls back",
			query:    "page=0&limit=5",
			defaults: true,
			want:     dto.QueryParams{Page: constant.DefaultValuePage, Limit: 5},
		},
		{
			name:  "limit is capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:  "unknown direction is dropped",
			query: "sort_by=floor&sort_dir=sideways",
			want:  dto.QueryParams{SortBy: "floor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/rooms?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(req, tt.defaults)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestQueryParams_Offset(t *testing.T) {
	assert.Equal(t, 0, (&dto.QueryParams{}).Offset())
	assert.Equal(t, 0, (&dto.QueryParams{Page: 1, Limit: 10}).Offset())
	assert.Equal(t, 40, (&dto.QueryParams{Page: 3, Limit: 20}).Offset())
	assert.Equal(t, 0, (&dto.QueryParams{Page: 3}).Offset())
}

func TestQueryParams_RestrictSort(t *testing.T) {
	tests := []struct {
		name   string
		params dto.QueryParams
		want   dto.QueryParams
	}{
		{
			name:   "allowed column keeps direction",
			params: dto.QueryParams{SortBy: "check_in_date", SortDir: dto.SortDirDesc},
			want:   dto.QueryParams{SortBy: "check_in_date", SortDir: dto.SortDirDesc},
		},
		{
			name:   "allowed column defaults to ascending",
			params: dto.QueryParams{SortBy: "check_in_date"},
			want:   dto.QueryParams{SortBy: "check_in_date", SortDir: dto.SortDirAsc},
		},
		{
			name:   "unknown column is dropped",
			params: dto.QueryParams{SortBy: "id; DROP TABLE rooms", SortDir: dto.SortDirAsc},
			want:   dto.QueryParams{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.RestrictSort("check_in_date", "created_at")

			assert.Equal(t, tt.want, tt.params)
		})
	}
}
