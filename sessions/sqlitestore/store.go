// Package sqlitestore persists agent sessions in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
	"github.com/jrsteele09/lead-dashboard/sessions"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	_ sessions.Storage = (*Store)(nil)
	_ sessions.Expirer = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS session_values (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS idx_session_values_updated ON session_values (updated_at);
`

// Store is a sessions.Storage backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file (and its directory) if needed and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[sqlitestore Open] create dir: %w", err)
		}
	}

	start := time.Now()
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("[sqlitestore Open] open: %w", err)
	}
	// sqlite3 serialises writers; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqlitestore Open] ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqlitestore Open] schema: %w", err)
	}

	log.Info().Str("path", path).Dur("duration", time.Since(start)).Msg("Session database ready")
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return "", err
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE namespace = ? AND key = ?`, namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[sqlitestore Get] %w", err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, namespace, key, value string) error {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_values (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("[sqlitestore Set] %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if err := sessions.ValidateLocation(namespace, key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE namespace = ? AND key = ?`, namespace, key,
	); err != nil {
		return fmt.Errorf("[sqlitestore Delete] %w", err)
	}
	return nil
}

// DeleteExpired removes every namespace whose newest value predates before.
func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_values WHERE namespace IN (
			SELECT namespace FROM session_values GROUP BY namespace HAVING MAX(updated_at) < ?
		)`, before.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("[sqlitestore DeleteExpired] %w", err)
	}
	return res.RowsAffected()
}
