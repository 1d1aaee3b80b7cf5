package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/healthtwin-backend/internal/engine"
)

// StateRepository persists one engine state per user as JSON
type StateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new state repository
func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// Get loads a user's state. It returns nil, nil when none is stored.
func (r *StateRepository) Get(ctx context.Context, userID string) (*engine.State, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT state_json FROM user_states WHERE user_id = ?", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state: %w", err)
	}

	var st engine.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &st, nil
}

// Save upserts a user's state
func (r *StateRepository) Save(ctx context.Context, userID string, st *engine.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_states (user_id, state_json, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET state_json = excluded.state_json, updated_at = excluded.updated_at`,
		userID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Delete removes a user's state
func (r *StateRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM user_states WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
