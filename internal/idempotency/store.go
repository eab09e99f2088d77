// Package idempotency deduplicates inbound adapter events so a redelivered
// Telegram update or replayed webhook is processed at most once within its
// TTL. Seen keys survive restarts via an atomically written JSON file.
package idempotency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

type seenEvents struct {
	Keys map[string]int64 `json:"keys"` // event key -> expiry (unix seconds)
}

type Store struct {
	path  string
	state seenEvents
	mu    sync.Mutex
}

func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  path,
		state: seenEvents{Keys: make(map[string]int64)},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.save()
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &s.state)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(data))
}

// EventKey derives a stable dedupe key from an adapter's event identifiers.
func EventKey(source string, updateID int64) string {
	return fmt.Sprintf("%s:%d", source, updateID)
}

// Seen marks the key and reports whether it had already been marked inside
// its TTL. The updated state is flushed to disk before returning so a crash
// after processing cannot resurrect the event.
func (s *Store) Seen(key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	if expiry, ok := s.state.Keys[key]; ok {
		if expiry > now {
			return true, nil
		}
		delete(s.state.Keys, key)
	}

	s.state.Keys[key] = now + int64(ttl.Seconds())
	return false, s.save()
}

// Prune drops expired keys and persists the shrunken state.
func (s *Store) Prune() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	count := 0
	for k, expiry := range s.state.Keys {
		if expiry < now {
			delete(s.state.Keys, k)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return count, s.save()
}
