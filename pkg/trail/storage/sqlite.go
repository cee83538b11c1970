package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/warden/pkg/trail"
)

const backendSQLite = "sqlite"

// SQLiteConfig contains configuration for the SQLite trail backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         ".warden/trail.db",
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements trail.Storage on SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the trail database.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, trail.NewStorageError(backendSQLite, "mkdir", err)
		}
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, trail.NewStorageError(backendSQLite, "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger.With("component", "trail.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("trail storage opened",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return trail.NewStorageError(backendSQLite, "enable_wal", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return trail.NewStorageError(backendSQLite, "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(Schema); err != nil {
		return trail.NewStorageError(backendSQLite, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return trail.NewStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return trail.NewStorageError(backendSQLite, "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return trail.NewStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	stmt, err := s.db.Prepare(`INSERT INTO decisions (` + selectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return trail.NewStorageError(backendSQLite, "prepare_insert", err)
	}
	s.insert = stmt
	return nil
}

// Store persists a trail record.
func (s *SQLiteStorage) Store(ctx context.Context, record *trail.Record) error {
	if record == nil {
		return trail.ErrNilRecord
	}

	missing, err := json.Marshal(record.Missing)
	if err != nil {
		return trail.NewStorageError(backendSQLite, "marshal_missing", err)
	}

	var score sql.NullFloat64
	if record.Score != nil {
		score = sql.NullFloat64{Float64: *record.Score, Valid: true}
	}

	_, err = s.insert.ExecContext(ctx,
		record.ID, record.SessionID, record.Time.UnixNano(),
		record.Tool, record.Kind, record.Identifier, score,
		record.Class, record.Outcome, record.Rule, record.Reason, string(missing),
		record.Explanation, record.Category, record.Advisory,
		record.Tier, record.ActionCount,
	)
	if err != nil {
		return trail.NewStorageError(backendSQLite, "store", err)
	}
	return nil
}

// Query returns matching records, oldest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *trail.Query) ([]*trail.Record, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM decisions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += fmt.Sprintf(" ORDER BY recorded_at ASC, rowid ASC LIMIT %d", limitOf(query))

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, trail.NewStorageError(backendSQLite, "query", err)
	}
	defer rows.Close()

	records := []*trail.Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, trail.NewStorageError(backendSQLite, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, trail.NewStorageError(backendSQLite, "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *trail.Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM decisions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, trail.NewStorageError(backendSQLite, "count", err)
	}
	return count, nil
}

// DeleteSession removes every record of a session.
func (s *SQLiteStorage) DeleteSession(ctx context.Context, sessionID string) (int64, error) {
	return s.exec(ctx, "delete_session", "DELETE FROM decisions WHERE session_id = ?", sessionID)
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "delete_older_than", "DELETE FROM decisions WHERE recorded_at < ?", cutoff.UnixNano())
}

func (s *SQLiteStorage) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, trail.NewStorageError(backendSQLite, op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, trail.NewStorageError(backendSQLite, op, err)
	}
	return n, nil
}

// Close releases the prepared statement and the database handle.
func (s *SQLiteStorage) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	if err := s.db.Close(); err != nil {
		return trail.NewStorageError(backendSQLite, "close", err)
	}
	s.logger.Debug("trail storage closed")
	return nil
}

func buildWhereClause(query *trail.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if query.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, query.SessionID)
	}
	if query.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, query.Outcome)
	}
	if query.StartTime != nil {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, query.EndTime.UnixNano())
	}

	return strings.Join(conditions, " AND "), args
}

func limitOf(query *trail.Query) int {
	if query == nil || query.Limit <= 0 {
		return trail.DefaultQueryLimit
	}
	return query.Limit
}

func scanRecord(rows *sql.Rows) (*trail.Record, error) {
	var (
		record                               trail.Record
		recordedAt                           int64
		tool, identifier, rule, reason       sql.NullString
		missing, explanation, category, tier sql.NullString
		score                                sql.NullFloat64
	)

	err := rows.Scan(
		&record.ID, &record.SessionID, &recordedAt,
		&tool, &record.Kind, &identifier, &score,
		&record.Class, &record.Outcome, &rule, &reason, &missing,
		&explanation, &category, &record.Advisory,
		&tier, &record.ActionCount,
	)
	if err != nil {
		return nil, err
	}

	record.Time = time.Unix(0, recordedAt).UTC()
	record.Tool = tool.String
	record.Identifier = identifier.String
	record.Rule = rule.String
	record.Reason = reason.String
	record.Explanation = explanation.String
	record.Category = category.String
	record.Tier = tier.String
	if score.Valid {
		v := score.Float64
		record.Score = &v
	}
	if missing.Valid && missing.String != "" && missing.String != "null" {
		if err := json.Unmarshal([]byte(missing.String), &record.Missing); err != nil {
			return nil, fmt.Errorf("decode missing: %w", err)
		}
	}

	return &record, nil
}
