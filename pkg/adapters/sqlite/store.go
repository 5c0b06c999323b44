// Package sqlite provides a StateStore backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aretw0/stitch/pkg/domain"
)

// Store implements ports.StateStore on a wizard_states table, one row per
// (session, wizard) pair.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
	}

	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and runs migrations.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS wizard_states (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			wizard_id TEXT NOT NULL,
			state TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE(session_id, wizard_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wizard_states_session ON wizard_states(session_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the stored values for key, or empty values when no row exists.
func (s *Store) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM wizard_states WHERE session_id = ? AND wizard_id = ?`,
		key.SessionID, key.WizardID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Values{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query wizard state: %w", err)
	}

	values := domain.Values{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard state: %w", err)
	}
	return values, nil
}

// Put upserts the values for key.
func (s *Store) Put(ctx context.Context, key domain.StateKey, values domain.Values) error {
	if values == nil {
		values = domain.Values{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard state: %w", err)
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wizard_states (id, session_id, wizard_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, wizard_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at`,
		uuid.NewString(), key.SessionID, key.WizardID, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save wizard state: %w", err)
	}
	return nil
}

// Clear deletes the row for key.
func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM wizard_states WHERE session_id = ? AND wizard_id = ?`,
		key.SessionID, key.WizardID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear wizard state: %w", err)
	}
	return nil
}

// Sessions returns the distinct session ids with stored state.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM wizard_states ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
