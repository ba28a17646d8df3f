package query

import (
	"fmt"

	"mercator-hq/relay/pkg/journal"
)

const (
	// DefaultLimit is the number of records returned when Limit is unset.
	DefaultLimit = 100

	// MaxLimit is the largest Limit accepted.
	MaxLimit = 10000
)

// SortColumns maps accepted sort fields to their storage column.
var SortColumns = map[string]string{
	"request_time": "request_time",
	"recorded_at":  "recorded_at",
	"duration":     "duration_ns",
	"status_code":  "status_code",
}

// ValidSortOrders contains the valid sort orders.
var ValidSortOrders = map[string]bool{
	"asc":  true,
	"desc": true,
}

// Validate returns a *journal.QueryError if any parameter is invalid.
func Validate(q *journal.Query) error {
	if q.Limit < 0 {
		return journal.NewQueryError(q, fmt.Errorf("limit must be >= 0, got %d", q.Limit))
	}
	if q.Limit > MaxLimit {
		return journal.NewQueryError(q, fmt.Errorf("limit must be <= %d, got %d", MaxLimit, q.Limit))
	}
	if q.Offset < 0 {
		return journal.NewQueryError(q, fmt.Errorf("offset must be >= 0, got %d", q.Offset))
	}

	if q.SortBy != "" {
		if _, ok := SortColumns[q.SortBy]; !ok {
			return journal.NewQueryError(q, fmt.Errorf("invalid sort field: %s", q.SortBy))
		}
	}
	if q.SortOrder != "" && !ValidSortOrders[q.SortOrder] {
		return journal.NewQueryError(q, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", q.SortOrder))
	}

	if q.StartTime != nil && q.EndTime != nil && q.StartTime.After(*q.EndTime) {
		return journal.NewQueryError(q, fmt.Errorf("start_time must be before end_time"))
	}

	if q.StatusCode < 0 || q.StatusCode > 999 {
		return journal.NewQueryError(q, fmt.Errorf("invalid status code: %d", q.StatusCode))
	}

	switch q.Status {
	case "", journal.StatusSuccess, journal.StatusError:
	default:
		return journal.NewQueryError(q, fmt.Errorf("invalid status: %s (must be 'success' or 'error')", q.Status))
	}

	return nil
}

// ApplyDefaults fills in the default limit and sort.
func ApplyDefaults(q *journal.Query) {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.SortBy == "" {
		q.SortBy = "request_time"
	}
	if q.SortOrder == "" {
		q.SortOrder = "desc"
	}
}
