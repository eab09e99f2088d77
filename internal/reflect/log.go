package reflect

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/harunnryd/kaizen/internal/store"
)

const (
	logKey    = "reflection_log"
	logMaxLen = 50
)

// Log persists the rolling per-user reflection history in the memories table.
type Log struct {
	store *store.Store
}

func NewLog(st *store.Store) *Log {
	return &Log{store: st}
}

// Append adds a reflection, dropping the oldest entries past the cap.
func (l *Log) Append(ctx context.Context, userID string, r Reflection) error {
	entries, err := l.Entries(ctx, userID)
	if err != nil {
		return err
	}
	entries = append(entries, r)
	if len(entries) > logMaxLen {
		entries = entries[len(entries)-logMaxLen:]
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return l.store.SetMemory(ctx, userID, logKey, raw)
}

// Entries returns the stored history, oldest first. An unreadable log is
// treated as empty rather than blocking new runs.
func (l *Log) Entries(ctx context.Context, userID string) ([]Reflection, error) {
	raw, err := l.store.GetMemory(ctx, userID, logKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var entries []Reflection
	if err := json.Unmarshal(raw, &entries); err != nil {
		slog.Warn("Discarding corrupt reflection log", "user_id", userID, "error", err)
		return nil, nil
	}
	return entries, nil
}
