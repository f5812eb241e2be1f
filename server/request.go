package server

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 100
)

// Pagination carries the resolved page window of a list request.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// getPagination resolves page and limit query parameters. Values that
// do not parse fall back to the defaults; the offset is derived from
// whatever page and limit resolve to.
func getPagination(r *http.Request) Pagination {
	page := defaultPage
	limit := defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func getSearch(r *http.Request) string {
	return r.URL.Query().Get("search")
}
