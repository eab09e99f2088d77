package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/harunnryd/kaizen/internal/config"

	"github.com/gofrs/flock"
)

// FileLock guards the data directory so only one agent instance writes to it.
type FileLock struct {
	fileLock   *flock.Flock
	lockPath   string
	acquiredAt time.Time
	mu         sync.Mutex
}

type FileLockConfig struct {
	LockTimeout  time.Duration
	LockRetry    time.Duration
	LockMaxRetry int
}

func DefaultFileLockConfig() *FileLockConfig {
	lockTimeout, _ := config.DurationOrDefault("", config.DefaultStoreLockTimeout)
	lockRetry, _ := config.DurationOrDefault("", config.DefaultStoreLockRetry)

	return &FileLockConfig{
		LockTimeout:  lockTimeout,
		LockRetry:    lockRetry,
		LockMaxRetry: config.DefaultStoreLockMaxRetry,
	}
}

func NewFileLock(basePath string, cfg *FileLockConfig) (*FileLock, error) {
	if cfg == nil {
		cfg = DefaultFileLockConfig()
	}

	lockPath := filepath.Join(basePath, "kaizen.lock")
	fl := &FileLock{
		fileLock: flock.New(lockPath),
		lockPath: lockPath,
	}

	if err := fl.acquireWithRetry(cfg); err != nil {
		return nil, err
	}

	fl.acquiredAt = time.Now()
	slog.Info("File lock acquired", "path", lockPath)
	return fl, nil
}

func (fl *FileLock) acquireWithRetry(cfg *FileLockConfig) error {
	deadline := time.Now().Add(cfg.LockTimeout)
	for i := 0; i < cfg.LockMaxRetry; i++ {
		locked, err := fl.fileLock.TryLock()
		if err != nil {
			return fmt.Errorf("failed to attempt lock: %w", err)
		}
		if locked {
			return nil
		}
		if time.Now().After(deadline) {
			break
		}
		if i < cfg.LockMaxRetry-1 {
			time.Sleep(cfg.LockRetry)
		}
	}
	return fmt.Errorf("data dir is locked by another instance (timeout after %v)", cfg.LockTimeout)
}

func (fl *FileLock) Unlock() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.fileLock == nil {
		return
	}

	if err := fl.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release file lock", "path", fl.lockPath, "error", err)
	} else {
		slog.Info("File lock released", "path", fl.lockPath, "held_ms", time.Since(fl.acquiredAt).Milliseconds())
	}
	fl.fileLock = nil
}
