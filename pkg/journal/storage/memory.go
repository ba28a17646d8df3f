package storage

import (
	"context"
	"slices"
	"sort"
	"sync"

	"mercator-hq/relay/pkg/journal"
	"mercator-hq/relay/pkg/journal/query"
)

// MemoryStorage implements journal.Storage with an in-memory map. Records
// are lost on restart; use it for development and tests.
type MemoryStorage struct {
	records map[string]*journal.Record
	mu      sync.RWMutex
	closed  bool
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*journal.Record),
	}
}

// Store persists a copy of record.
func (s *MemoryStorage) Store(ctx context.Context, record *journal.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return journal.NewStorageError("memory", "store", journal.ErrClosed)
	}

	recordCopy := *record
	s.records[record.ID] = &recordCopy
	return nil
}

// Query retrieves records matching the query filters.
func (s *MemoryStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Record, error) {
	matched, err := s.collect(q)
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// QueryStream delivers the result of Query on a channel.
func (s *MemoryStorage) QueryStream(ctx context.Context, q *journal.Query) (<-chan *journal.Record, <-chan error, error) {
	matched, err := s.collect(q)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *journal.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		for _, record := range matched {
			if err := ctx.Err(); err != nil {
				errCh <- err
				return
			}
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, q *journal.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, journal.NewStorageError("memory", "count", journal.ErrClosed)
	}

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, q) {
			count++
		}
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, q *journal.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, journal.NewStorageError("memory", "delete", journal.ErrClosed)
	}

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, q) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping reports ErrClosed after Close.
func (s *MemoryStorage) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return journal.NewStorageError("memory", "ping", journal.ErrClosed)
	}
	return nil
}

// Close drops all records.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = make(map[string]*journal.Record)
	return nil
}

// Size returns the number of stored records.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// collect filters, sorts and paginates under the read lock.
func (s *MemoryStorage) collect(q *journal.Query) ([]*journal.Record, error) {
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	effective := *q
	query.ApplyDefaults(&effective)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, journal.NewStorageError("memory", "query", journal.ErrClosed)
	}

	results := []*journal.Record{}
	for _, record := range s.records {
		if matchesQuery(record, &effective) {
			recordCopy := *record
			results = append(results, &recordCopy)
		}
	}

	sortRecords(results, effective.SortBy, effective.SortOrder == "desc")

	if effective.Offset >= len(results) {
		return []*journal.Record{}, nil
	}
	results = results[effective.Offset:]
	if len(results) > effective.Limit {
		results = results[:effective.Limit]
	}
	return results, nil
}

func sortRecords(records []*journal.Record, sortBy string, desc bool) {
	key := func(r *journal.Record) int64 {
		switch sortBy {
		case "recorded_at":
			return r.RecordedAt.UnixNano()
		case "duration":
			return int64(r.Duration)
		case "status_code":
			return int64(r.StatusCode)
		default:
			return r.RequestTime.UnixNano()
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		ki, kj := key(records[i]), key(records[j])
		if ki == kj {
			// ID as tie breaker keeps pagination stable.
			if desc {
				return records[i].ID > records[j].ID
			}
			return records[i].ID < records[j].ID
		}
		if desc {
			return ki > kj
		}
		return ki < kj
	})
}

func matchesQuery(record *journal.Record, q *journal.Query) bool {
	if q.StartTime != nil && record.RequestTime.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && record.RequestTime.After(*q.EndTime) {
		return false
	}
	if len(q.IDs) > 0 && !slices.Contains(q.IDs, record.ID) {
		return false
	}
	if q.RequestID != "" && record.RequestID != q.RequestID {
		return false
	}
	if q.Target != "" && record.Target != q.Target {
		return false
	}
	if q.ErrorKind != "" && record.ErrorKind != q.ErrorKind {
		return false
	}
	if q.StatusCode != 0 && record.StatusCode != q.StatusCode {
		return false
	}

	switch q.Status {
	case journal.StatusSuccess:
		return record.Succeeded()
	case journal.StatusError:
		return !record.Succeeded()
	}
	return true
}
