// Package store provides SQLite-backed persistence for the alert journal.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scbrown/newman/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// SQLiteStore implements Store using a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath.
// It auto-creates the parent directory (e.g. ~/.newman/) and runs
// schema migrations to ensure the database is up to date.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single connection for WAL mode simplicity.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// migrate runs schema migrations up to the current version.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}

	var ver int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&ver)
	if err == sql.ErrNoRows {
		ver = 0
	} else if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if ver > schemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", ver, schemaVersion)
	}

	if ver < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) migrateV1() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id            TEXT PRIMARY KEY,
			timestamp     TEXT NOT NULL,
			severity      TEXT NOT NULL,
			message       TEXT NOT NULL,
			error_type    TEXT,
			namespace     TEXT,
			operation     TEXT,
			invocation_id TEXT,
			host          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_timestamp ON alerts(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_severity ON alerts(severity)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_target ON alerts(namespace, operation)`,
		`INSERT OR REPLACE INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}
	return nil
}

// RecordAlert persists a single alert.
func (s *SQLiteStore) RecordAlert(ctx context.Context, a model.Alert) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, timestamp, severity, message, error_type, namespace, operation, invocation_id, host)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Timestamp.UTC().Format(time.RFC3339Nano),
		a.Severity,
		a.Message,
		nullableString(a.ErrorType),
		nullableString(a.Namespace),
		nullableString(a.Operation),
		nullableString(a.InvocationID),
		nullableString(a.Host),
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// ListAlerts returns alerts matching the given filter options.
func (s *SQLiteStore) ListAlerts(ctx context.Context, opts ListOpts) ([]model.Alert, error) {
	query := "SELECT id, timestamp, severity, message, error_type, namespace, operation, invocation_id, host FROM alerts WHERE 1=1"
	var args []any

	if !opts.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, opts.Since.UTC().Format(time.RFC3339Nano))
	}
	if opts.Severity != "" {
		query += " AND severity = ?"
		args = append(args, opts.Severity)
	}
	if opts.Namespace != "" {
		query += " AND namespace = ?"
		args = append(args, opts.Namespace)
	}
	if opts.Operation != "" {
		query += " AND operation = ?"
		args = append(args, opts.Operation)
	}
	query += " ORDER BY timestamp DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		var ts string
		var errorType, namespace, operation, invocationID, host sql.NullString
		if err := rows.Scan(&a.ID, &ts, &a.Severity, &a.Message, &errorType, &namespace, &operation, &invocationID, &host); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.ErrorType = errorType.String
		a.Namespace = namespace.String
		a.Operation = operation.String
		a.InvocationID = invocationID.String
		a.Host = host.String
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		a.Timestamp = t
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Stats returns summary statistics about stored alerts.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM alerts").Scan(&st.Total); err != nil {
		return st, fmt.Errorf("count alerts: %w", err)
	}

	sevRows, err := s.db.QueryContext(ctx, "SELECT severity, COUNT(*) FROM alerts GROUP BY severity")
	if err != nil {
		return st, fmt.Errorf("count severities: %w", err)
	}
	defer sevRows.Close()

	st.BySeverity = make(map[string]int)
	for sevRows.Next() {
		var sev string
		var count int
		if err := sevRows.Scan(&sev, &count); err != nil {
			return st, fmt.Errorf("scan severity: %w", err)
		}
		st.BySeverity[sev] = count
	}
	if err := sevRows.Err(); err != nil {
		return st, err
	}

	// Top 5 failing operations.
	opRows, err := s.db.QueryContext(ctx,
		`SELECT namespace || ' ' || operation, COUNT(*) as cnt FROM alerts
		 WHERE namespace IS NOT NULL AND operation IS NOT NULL
		 GROUP BY namespace, operation ORDER BY cnt DESC LIMIT 5`)
	if err != nil {
		return st, fmt.Errorf("top operations: %w", err)
	}
	defer opRows.Close()

	for opRows.Next() {
		var nc NameCount
		if err := opRows.Scan(&nc.Name, &nc.Count); err != nil {
			return st, fmt.Errorf("scan top operation: %w", err)
		}
		st.TopOperations = append(st.TopOperations, nc)
	}
	if err := opRows.Err(); err != nil {
		return st, err
	}

	if st.Total > 0 {
		var earliest, latest string
		if err := s.db.QueryRowContext(ctx,
			"SELECT MIN(timestamp), MAX(timestamp) FROM alerts").Scan(&earliest, &latest); err != nil {
			return st, fmt.Errorf("date range: %w", err)
		}
		st.Earliest, _ = time.Parse(time.RFC3339Nano, earliest)
		st.Latest, _ = time.Parse(time.RFC3339Nano, latest)
	}

	since := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339Nano)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alerts WHERE timestamp >= ?", since).Scan(&st.Last24h); err != nil {
		return st, fmt.Errorf("count last 24h: %w", err)
	}

	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// nullableString returns nil for empty strings, otherwise the string value.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
