package dto

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"hotel/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams is the paging and ordering part of a list request.
type QueryParams struct {
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sort_by"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir. Malformed or
// non-positive numbers are ignored and limit is capped at MaxValueLimit.
// With defaults set, missing page and limit fall back to the first page of
// DefaultValueLimit rows.
func (q *QueryParams) FromRequest(r *http.Request, defaults bool) {
	values := r.URL.Query()

	q.Page = positive(values.Get(constant.RequestParamPage), q.Page)
	q.Limit = min(positive(values.Get(constant.RequestParamLimit), q.Limit), constant.MaxValueLimit)

	if sortBy := values.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	if dir := strings.ToUpper(values.Get(constant.RequestParamSortDir)); dir == SortDirAsc || dir == SortDirDesc {
		q.SortDir = dir
	}

	if !defaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// Offset is the row offset of Page, or zero when paging is off.
func (q *QueryParams) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}

	return (q.Page - 1) * q.Limit
}

// RestrictSort clears SortBy unless it names an allowed column; the column is
// interpolated into ORDER BY.
func (q *QueryParams) RestrictSort(allowed ...string) {
	if q.SortBy == "" {
		return
	}

	if !slices.Contains(allowed, q.SortBy) {
		q.SortBy = ""
		q.SortDir = ""

		return
	}

	if q.SortDir == "" {
		q.SortDir = SortDirAsc
	}
}

func positive(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}
