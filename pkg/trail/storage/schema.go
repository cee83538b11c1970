package storage

// SchemaVersion is the current trail schema version.
const SchemaVersion = 1

// Schema creates the trail tables. Times are stored as Unix nanoseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    recorded_at INTEGER NOT NULL,

    tool TEXT,
    kind TEXT NOT NULL,
    identifier TEXT,
    score REAL,

    class TEXT NOT NULL,
    outcome TEXT NOT NULL,
    rule TEXT,
    reason TEXT,
    missing TEXT,
    explanation TEXT,
    category TEXT,
    advisory BOOLEAN NOT NULL DEFAULT 0,

    tier TEXT,
    action_count INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_decisions_recorded_at ON decisions(recorded_at);
CREATE INDEX IF NOT EXISTS idx_decisions_outcome ON decisions(outcome);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version if absent.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`

const selectColumns = `id, session_id, recorded_at, tool, kind, identifier, score,
	class, outcome, rule, reason, missing, explanation, category, advisory,
	tier, action_count`
