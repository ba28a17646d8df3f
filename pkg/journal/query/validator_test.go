package query

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/relay/pkg/journal"
)

func TestValidate(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name    string
		query   journal.Query
		wantErr bool
	}{
		{name: "empty", query: journal.Query{}},
		{name: "full", query: journal.Query{StartTime: &early, EndTime: &late, Status: "error", SortBy: "duration", SortOrder: "asc", Limit: 10, Offset: 5, StatusCode: 404}},
		{name: "negative limit", query: journal.Query{Limit: -1}, wantErr: true},
		{name: "limit too large", query: journal.Query{Limit: MaxLimit + 1}, wantErr: true},
		{name: "negative offset", query: journal.Query{Offset: -1}, wantErr: true},
		{name: "unknown sort field", query: journal.Query{SortBy: "id"}, wantErr: true},
		{name: "bad sort order", query: journal.Query{SortOrder: "DESC"}, wantErr: true},
		{name: "reversed range", query: journal.Query{StartTime: &late, EndTime: &early}, wantErr: true},
		{name: "bad status", query: journal.Query{Status: "blocked"}, wantErr: true},
		{name: "bad status code", query: journal.Query{StatusCode: 1000}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var qerr *journal.QueryError
			if err != nil && !errors.As(err, &qerr) {
				t.Errorf("error type = %T, want *journal.QueryError", err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	q := &journal.Query{}
	ApplyDefaults(q)
	if q.Limit != DefaultLimit || q.SortBy != "request_time" || q.SortOrder != "desc" {
		t.Errorf("ApplyDefaults() = %+v", q)
	}

	q = &journal.Query{Limit: 5, SortBy: "duration", SortOrder: "asc"}
	ApplyDefaults(q)
	if q.Limit != 5 || q.SortBy != "duration" || q.SortOrder != "asc" {
		t.Errorf("ApplyDefaults() overwrote fields: %+v", q)
	}
}
