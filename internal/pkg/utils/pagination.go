package utils

import (
	"net/http"
	"strconv"
)

// ListParams contains limit/offset parameters for list endpoints
type ListParams struct {
	Limit  int
	Offset int
}

// DefaultListLimit is the default number of items returned by list endpoints
const DefaultListLimit = 200

// MaxListLimit is the maximum number of items returned by list endpoints
const MaxListLimit = 1000

// ParseListParams parses limit/offset from the request query string
func ParseListParams(r *http.Request) ListParams {
	limit := parseIntQuery(r.URL.Query().Get("limit"), DefaultListLimit)
	offset := parseIntQuery(r.URL.Query().Get("offset"), 0)

	if limit < 1 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return ListParams{Limit: limit, Offset: offset}
}

func parseIntQuery(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}
