package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetMemory returns the raw JSON value for a per-user key, or nil when unset.
func (s *Store) GetMemory(ctx context.Context, userID, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value_json FROM memories WHERE user_id = ? AND key = ?`,
		userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *Store) SetMemory(ctx context.Context, userID, key string, valueJSON []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO memories (user_id, key, value_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
		userID, key, string(valueJSON), time.Now().UTC())
	return err
}
