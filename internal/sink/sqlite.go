package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores lines in a SQLite table keyed by destination. Append
// inserts a row; Overwrite clears the destination's rows first, so the
// destination holds exactly one line afterwards.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the database at dbPath and ensures the
// schema exists. Use ":memory:" in tests.
func NewSQLiteSink(dbPath string, logger *slog.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dest TEXT NOT NULL,
		line TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_lines_dest ON lines(dest)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteSink{
		db:     db,
		logger: logger.With("component", "sqlite-sink"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Overwrite replaces all of dest's rows with a single row holding line.
func (s *SQLiteSink) Overwrite(ctx context.Context, dest, line string) error {
	s.logger.Debug("sql", "op", "overwrite", "dest", dest)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite sink: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM lines WHERE dest = ?`, dest); err != nil {
		return fmt.Errorf("sqlite sink: clear %s: %w", dest, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO lines (dest, line, created_at) VALUES (?, ?, ?)`,
		dest, line, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("sqlite sink: insert %s: %w", dest, err)
	}

	return tx.Commit()
}

// Append adds a row holding line to dest.
func (s *SQLiteSink) Append(ctx context.Context, dest, line string) error {
	s.logger.Debug("sql", "op", "append", "dest", dest)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lines (dest, line, created_at) VALUES (?, ?, ?)`,
		dest, line, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite sink: insert %s: %w", dest, err)
	}
	return nil
}

// Lines returns dest's lines in insertion order.
func (s *SQLiteSink) Lines(ctx context.Context, dest string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line FROM lines WHERE dest = ? ORDER BY id`, dest)
	if err != nil {
		return nil, fmt.Errorf("sqlite sink: query %s: %w", dest, err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("sqlite sink: scan: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
