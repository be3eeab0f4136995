package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps sessions in a local SQLite file so they survive restarts of
// a single instance.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenSQLite opens (or creates) the session database at path.
func OpenSQLite(path string, ttl time.Duration) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite session store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS wizard_sessions (
		id         TEXT PRIMARY KEY,
		data       BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	return &SQLite{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLite) Load(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM wizard_sessions WHERE id = ? AND expires_at > ?`,
		id, s.now().Unix(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return data, nil
}

// Save stores data and drops expired sessions.
func (s *SQLite) Save(ctx context.Context, id string, data []byte) error {
	now := s.now()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM wizard_sessions WHERE expires_at <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("purging sessions: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO wizard_sessions (id, data, expires_at) VALUES (?, ?, ?)`,
		id, data, now.Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wizard_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
