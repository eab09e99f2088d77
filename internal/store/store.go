// Package store is the durable backend for the agent: tasks, the run ledger,
// approval requests, improvement proposals, active rules, and per-user
// memories. It uses SQLite through database/sql; status transitions that can
// race (approval and proposal decisions) are single-statement compare-and-swap
// updates so the winner is decided by the database, not by readers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

type Store struct {
	db       *sql.DB
	basePath string
	lock     *FileLock
}

type Options struct {
	// SkipLock disables the single-instance file lock (tests).
	SkipLock bool
	LockCfg  *FileLockConfig
}

func New(basePath string, opts Options) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	var lock *FileLock
	if !opts.SkipLock {
		var err error
		lock, err = NewFileLock(basePath, opts.LockCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
	}

	dbPath := filepath.Join(basePath, "kaizen.db")
	db, err := openDB("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		if lock != nil {
			lock.Unlock()
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, basePath: basePath, lock: lock}
	if err := s.migrate(); err != nil {
		db.Close()
		if lock != nil {
			lock.Unlock()
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.lock != nil {
		s.lock.Unlock()
	}
	return err
}

// Ping reports whether the backend is reachable. The orchestrator treats a
// failure here as fatal for the current message.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// KnownUsers returns every user id that has at least one run or task,
// for scheduled digests.
func (s *Store) KnownUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM tasks
		UNION
		SELECT user_id FROM agent_runs
		ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}
