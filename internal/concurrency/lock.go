package concurrency

import "sync"

// UserLockManager serializes pipeline entry per user. Two messages from the
// same user are processed one at a time; different users proceed in parallel.
type UserLockManager struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

func NewUserLockManager() *UserLockManager {
	return &UserLockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

func (m *UserLockManager) Lock(userID string) {
	m.mu.Lock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	m.mu.Unlock()
	lock.Lock()
}

func (m *UserLockManager) Unlock(userID string) {
	m.mu.Lock()
	lock, ok := m.locks[userID]
	if ok {
		lock.Unlock()
	}
	m.mu.Unlock()
}
