package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates the journal tables. Timestamps and durations are stored as
// INTEGER nanoseconds so both sqlite drivers read them back identically.
const Schema = `
CREATE TABLE IF NOT EXISTS journal (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,

    -- Request
    method TEXT NOT NULL,
    path TEXT NOT NULL,
    target TEXT NOT NULL,
    remote_addr TEXT,
    user_agent TEXT,
    entry_count INTEGER NOT NULL DEFAULT 0,
    request_hash TEXT,

    -- Response
    status_code INTEGER NOT NULL,
    content_type TEXT,
    response_size INTEGER NOT NULL DEFAULT 0,
    response_hash TEXT,

    -- Failure, NULL when relayed
    error_kind TEXT,
    error TEXT,

    -- Timing
    duration_ns INTEGER NOT NULL,
    request_time INTEGER NOT NULL,
    recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_request_time ON journal(request_time);
CREATE INDEX IF NOT EXISTS idx_journal_request_id ON journal(request_id);
CREATE INDEX IF NOT EXISTS idx_journal_target ON journal(target);
CREATE INDEX IF NOT EXISTS idx_journal_error_kind ON journal(error_kind);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, ?)
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const selectColumns = `id, request_id, method, path, target, remote_addr, user_agent,
	entry_count, request_hash, status_code, content_type, response_size, response_hash,
	error_kind, error, duration_ns, request_time, recorded_at`
