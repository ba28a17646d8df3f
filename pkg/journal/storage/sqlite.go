package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Pure Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
	// cgo driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/relay/pkg/journal"
	"mercator-hq/relay/pkg/journal/query"
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverCGO     = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver is DriverModernc or DriverCGO.
	// Default: DriverModernc
	Driver string

	// Path is the database file path. ":memory:" is accepted for tests.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       DriverModernc,
		Path:         "data/journal.db",
		MaxOpenConns: 10,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements journal.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies the schema and verifies the
// schema version.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}

	logger := slog.Default().With("component", "journal.storage.sqlite")

	inMemory := config.Path == ":memory:"
	if !inMemory {
		if dir := filepath.Dir(config.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, journal.NewStorageError("sqlite", "create_dir", err)
			}
		}
	}

	dsn, err := buildDSN(config)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "open", err)
	}

	// Every connection to ":memory:" is a separate database.
	if inMemory {
		db.SetMaxOpenConns(1)
	} else if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"driver", config.Driver,
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// buildDSN encodes the pragmas in the connection string so they apply to
// every pooled connection. The two drivers spell them differently.
func buildDSN(config *SQLiteConfig) (string, error) {
	busyMs := config.BusyTimeout.Milliseconds()
	params := url.Values{}

	switch config.Driver {
	case DriverModernc:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyMs))
		if config.WALMode {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	case DriverCGO:
		params.Set("_busy_timeout", fmt.Sprintf("%d", busyMs))
		if config.WALMode {
			params.Set("_journal_mode", "WAL")
		}
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", config.Driver)
	}

	if config.Path == ":memory:" {
		return "file::memory:?" + params.Encode(), nil
	}
	return "file:" + config.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and checks its version.
func (s *SQLiteStorage) initialize() error {
	if err := s.db.Ping(); err != nil {
		return journal.NewStorageError("sqlite", "ping", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return journal.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return journal.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return journal.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return journal.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// Store inserts a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *journal.Record) error {
	const insert = `
		INSERT INTO journal (
			id, request_id, method, path, target, remote_addr, user_agent,
			entry_count, request_hash, status_code, content_type, response_size, response_hash,
			error_kind, error, duration_ns, request_time, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, insert,
		record.ID, record.RequestID, record.Method, record.Path, record.Target, record.RemoteAddr, record.UserAgent,
		record.EntryCount, record.RequestHash, record.StatusCode, record.ContentType, record.ResponseSize, record.ResponseHash,
		nullString(record.ErrorKind), nullString(record.Error),
		int64(record.Duration), toUnixNano(record.RequestTime), toUnixNano(record.RecordedAt),
	)
	if err != nil {
		return journal.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query retrieves records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Record, error) {
	sqlQuery, args, err := s.buildSelect(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*journal.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, journal.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream streams matching rows without materializing the result set.
func (s *SQLiteStorage) QueryStream(ctx context.Context, q *journal.Query) (<-chan *journal.Record, <-chan error, error) {
	sqlQuery, args, err := s.buildSelect(q)
	if err != nil {
		return nil, nil, err
	}

	recordsCh := make(chan *journal.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- journal.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRow(rows)
			if err != nil {
				errCh <- journal.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- journal.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, q *journal.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	whereClause, args := buildWhereClause(q)
	sqlQuery := "SELECT COUNT(*) FROM journal" + whereClause

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, journal.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// Delete removes records matching the query filters.
func (s *SQLiteStorage) Delete(ctx context.Context, q *journal.Query) (int64, error) {
	if err := query.Validate(q); err != nil {
		return 0, err
	}

	whereClause, args := buildWhereClause(q)
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal"+whereClause, args...)
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError("sqlite", "delete", err)
	}
	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return journal.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return journal.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

// buildSelect validates q and renders the full SELECT statement.
func (s *SQLiteStorage) buildSelect(q *journal.Query) (string, []any, error) {
	if err := query.Validate(q); err != nil {
		return "", nil, err
	}
	effective := *q
	query.ApplyDefaults(&effective)

	whereClause, args := buildWhereClause(&effective)

	// SortBy and SortOrder are whitelisted by Validate.
	column := query.SortColumns[effective.SortBy]
	order := strings.ToUpper(effective.SortOrder)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(selectColumns)
	b.WriteString(" FROM journal")
	b.WriteString(whereClause)
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", column, order, order)
	fmt.Fprintf(&b, " LIMIT %d", effective.Limit)
	if effective.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", effective.Offset)
	}

	return b.String(), args, nil
}

// buildWhereClause renders the filters as " WHERE ..." or "" when q has none.
func buildWhereClause(q *journal.Query) (string, []any) {
	var conditions []string
	var args []any

	if q.StartTime != nil {
		conditions = append(conditions, "request_time >= ?")
		args = append(args, toUnixNano(*q.StartTime))
	}
	if q.EndTime != nil {
		conditions = append(conditions, "request_time <= ?")
		args = append(args, toUnixNano(*q.EndTime))
	}
	if len(q.IDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.IDs)), ",")
		conditions = append(conditions, "id IN ("+placeholders+")")
		for _, id := range q.IDs {
			args = append(args, id)
		}
	}
	if q.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, q.RequestID)
	}
	if q.Target != "" {
		conditions = append(conditions, "target = ?")
		args = append(args, q.Target)
	}
	if q.ErrorKind != "" {
		conditions = append(conditions, "error_kind = ?")
		args = append(args, q.ErrorKind)
	}
	if q.StatusCode != 0 {
		conditions = append(conditions, "status_code = ?")
		args = append(args, q.StatusCode)
	}

	switch q.Status {
	case journal.StatusSuccess:
		conditions = append(conditions, "error_kind IS NULL")
	case journal.StatusError:
		conditions = append(conditions, "error_kind IS NOT NULL")
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// scanRow scans one row selected with selectColumns.
func scanRow(rows *sql.Rows) (*journal.Record, error) {
	var record journal.Record
	var remoteAddr, userAgent, requestHash, contentType, responseHash sql.NullString
	var errorKind, errorMsg sql.NullString
	var durationNs, requestTime, recordedAt int64

	err := rows.Scan(
		&record.ID, &record.RequestID, &record.Method, &record.Path, &record.Target, &remoteAddr, &userAgent,
		&record.EntryCount, &requestHash, &record.StatusCode, &contentType, &record.ResponseSize, &responseHash,
		&errorKind, &errorMsg, &durationNs, &requestTime, &recordedAt,
	)
	if err != nil {
		return nil, err
	}

	record.RemoteAddr = remoteAddr.String
	record.UserAgent = userAgent.String
	record.RequestHash = requestHash.String
	record.ContentType = contentType.String
	record.ResponseHash = responseHash.String
	record.ErrorKind = errorKind.String
	record.Error = errorMsg.String
	record.Duration = time.Duration(durationNs)
	record.RequestTime = fromUnixNano(requestTime)
	record.RecordedAt = fromUnixNano(recordedAt)

	return &record, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}
