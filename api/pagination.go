// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/blinklabs-io/gavel/types"
)

const (
	DefaultPaginationCount = 100
	MaxPaginationCount     = 100
	DefaultPaginationPage  = 1
	PaginationOrderAsc     = "asc"
	PaginationOrderDesc    = "desc"
)

var ErrInvalidPaginationParameters = types.NewError(
	types.KindInvalidInput,
	"InvalidPagination",
	"invalid pagination parameters",
)

// PaginationParams contains parsed pagination query values. After is a
// sequence cursor used by the event feed instead of Page
type PaginationParams struct {
	Count int
	Page  int
	After uint64
	Order string
}

// ParsePagination parses the count, page, order and after query parameters
// and clamps count and page into range
func ParsePagination(r *http.Request) (PaginationParams, error) {
	params := PaginationParams{
		Count: DefaultPaginationCount,
		Page:  DefaultPaginationPage,
		Order: PaginationOrderAsc,
	}
	query := r.URL.Query()
	for name, dst := range map[string]*int{
		"count": &params.Count,
		"page":  &params.Page,
	} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		*dst = val
	}
	if raw := query.Get("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
		params.After = after
	}
	if raw := query.Get("order"); raw != "" {
		switch order := strings.ToLower(raw); order {
		case PaginationOrderAsc, PaginationOrderDesc:
			params.Order = order
		default:
			return PaginationParams{}, ErrInvalidPaginationParameters
		}
	}
	params.Count = min(max(params.Count, 1), MaxPaginationCount)
	params.Page = max(params.Page, 1)
	return params, nil
}

// SetPaginationHeaders reports the total number of items and pages
func SetPaginationHeaders(
	w http.ResponseWriter,
	totalItems int,
	params PaginationParams,
) {
	totalItems = max(totalItems, 0)
	count := params.Count
	if count < 1 {
		count = DefaultPaginationCount
	}
	totalPages := (totalItems + count - 1) / count
	w.Header().Set("X-Pagination-Count-Total", strconv.Itoa(totalItems))
	w.Header().Set("X-Pagination-Page-Total", strconv.Itoa(totalPages))
}

// Paginate returns the page of items selected by params
func Paginate[T any](items []T, params PaginationParams) []T {
	if params.Order == PaginationOrderDesc {
		reversed := make([]T, len(items))
		for i, item := range items {
			reversed[len(items)-1-i] = item
		}
		items = reversed
	}
	if len(items) == 0 || params.Page < 1 || params.Count < 1 ||
		params.Page-1 > (len(items)-1)/params.Count {
		return []T{}
	}
	start := (params.Page - 1) * params.Count
	end := min(start+params.Count, len(items))
	return items[start:end]
}
