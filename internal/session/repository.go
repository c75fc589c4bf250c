package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository stores session values as JSON rows in sqlite.
type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new session value repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// Get implements Store.
func (r *Repository) Get(ctx context.Context, sessionID, name string, dst any) error {
	var raw string
	err := r.DB.QueryRowContext(ctx, "SELECT value FROM session_values WHERE session_id = ? AND name = ?", sessionID, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode session value %q: %w", name, err)
	}
	return nil
}

// Set implements Store.
func (r *Repository) Set(ctx context.Context, sessionID, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode session value %q: %w", name, err)
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO session_values (session_id, name, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(session_id, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sessionID, name, string(raw))
	return err
}
