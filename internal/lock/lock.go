// Package lock implements the per-file exclusive-edit state machine. At most
// one token holds a file at any instant; every transition is atomic with
// respect to concurrent callers. Locks never expire on their own: a crashed
// holder keeps the file wedged until its token resurfaces (known limitation
// of the in-process design).
package lock

import (
	"sync"
	"time"

	"github.com/arzan03/DocBridge/internal/httperr"
)

// Record describes the current holder of a file.
type Record struct {
	FileID      string
	Token       string
	HolderSince time.Time
}

// Manager is the process-wide lock table. State is process-local; scaling
// out requires an external store behind the same method set.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*Record
	now   func() time.Time
}

// NewManager builds an empty lock table.
func NewManager() *Manager {
	return &Manager{
		locks: make(map[string]*Record),
		now:   time.Now,
	}
}

// Lock acquires the file for token. Re-locking with the holder's own token
// succeeds (treated as a refresh); any other token conflicts.
func (m *Manager) Lock(fileID, token string) error {
	if token == "" {
		return &httperr.LockConflict{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		m.locks[fileID] = &Record{FileID: fileID, Token: token, HolderSince: m.now()}
		return nil
	}
	if current.Token == token {
		current.HolderSince = m.now()
		return nil
	}
	return &httperr.LockConflict{Current: current.Token}
}

// Get returns the current holder's token, or "" when unlocked. Pure read.
func (m *Manager) Get(fileID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, held := m.locks[fileID]; held {
		return current.Token
	}
	return ""
}

// Holder returns the full record for observability, or false when unlocked.
func (m *Manager) Holder(fileID string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, held := m.locks[fileID]; held {
		return *current, true
	}
	return Record{}, false
}

// Refresh renews the holder's lock. A non-matching token conflicts with the
// real holder attached; refreshing an unlocked file conflicts with "".
func (m *Manager) Refresh(fileID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		return &httperr.LockConflict{}
	}
	if current.Token != token {
		return &httperr.LockConflict{Current: current.Token}
	}
	current.HolderSince = m.now()
	return nil
}

// Unlock releases the file only when token matches the holder.
func (m *Manager) Unlock(fileID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		return &httperr.LockConflict{}
	}
	if current.Token != token {
		return &httperr.LockConflict{Current: current.Token}
	}
	delete(m.locks, fileID)
	return nil
}

// UnlockAndRelock atomically hands the file from oldToken to newToken.
func (m *Manager) UnlockAndRelock(fileID, oldToken, newToken string) error {
	if newToken == "" {
		return &httperr.LockConflict{Current: m.Get(fileID)}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		return &httperr.LockConflict{}
	}
	if current.Token != oldToken {
		return &httperr.LockConflict{Current: current.Token}
	}
	current.Token = newToken
	current.HolderSince = m.now()
	return nil
}

// Move transfers a lock record to a new fileId after a rename. No-op when
// the file is unlocked.
func (m *Manager) Move(fileID, newFileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, held := m.locks[fileID]
	if !held || fileID == newFileID {
		return
	}
	delete(m.locks, fileID)
	current.FileID = newFileID
	m.locks[newFileID] = current
}

// Check gates a content write: an unlocked file accepts any write, a locked
// file only accepts the holder's token.
func (m *Manager) Check(fileID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		return nil
	}
	if current.Token != token {
		return &httperr.LockConflict{Current: current.Token}
	}
	return nil
}

// Release gates a delete and drops the record. The file must be unlocked or
// the presented token must match the holder.
func (m *Manager) Release(fileID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, held := m.locks[fileID]
	if !held {
		return nil
	}
	if current.Token != token {
		return &httperr.LockConflict{Current: current.Token}
	}
	delete(m.locks, fileID)
	return nil
}
