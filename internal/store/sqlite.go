package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "kabuchart/internal/errors"
)

// SQLiteStore implements SessionStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (creating if needed) the flag database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrSessionStore, "create directory %s: %v", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrSessionStore, "open database: %v", err)
	}

	// A terminal session never needs more than one writer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, now: time.Now}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, apperrors.Wrapf(apperrors.ErrSessionStore, "initialize schema: %v", err)
	}

	return store, nil
}

// initSchema creates the flag table and its index.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS session_flags (
		session_id TEXT NOT NULL,
		flag TEXT NOT NULL,
		set_at DATETIME NOT NULL,
		PRIMARY KEY (session_id, flag)
	);

	CREATE INDEX IF NOT EXISTS idx_session_flags_set_at ON session_flags(set_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// IsSet reports whether flag is set for session.
func (s *SQLiteStore) IsSet(ctx context.Context, session, flag string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM session_flags WHERE session_id = ? AND flag = ?
	`, session, flag).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: query flag %s: %v", apperrors.ErrSessionStore, flag, err)
	}
	return n > 0, nil
}

// Set marks flag for session, refreshing its timestamp if already set.
func (s *SQLiteStore) Set(ctx context.Context, session, flag string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_flags (session_id, flag, set_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id, flag) DO UPDATE SET set_at = excluded.set_at
	`, session, flag, s.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: set flag %s: %v", apperrors.ErrSessionStore, flag, err)
	}
	return nil
}

// Purge removes flags set before olderThan.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM session_flags WHERE set_at < ?
	`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: purge: %v", apperrors.ErrSessionStore, err)
	}
	return res.RowsAffected()
}
