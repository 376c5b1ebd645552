// Package session keeps the ephemeral records binding a user, a brokered
// storage credential, and a bound file. State is process-local; a
// multi-instance deployment must swap in a shared store behind Store's
// method set.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds an authenticated user to a storage credential and a file.
// StorageCredential must never be serialized into a response or a log line.
type Session struct {
	ID                string
	UserID            string
	DisplayName       string
	StorageCredential string
	FileID            string
	NodeID            string
	CreatedAt         time.Time
}

// Store is a mutex-guarded in-memory session table with a per-user cap and
// a periodic age sweep.
type Store struct {
	mu      sync.Mutex
	byID    map[string]*Session
	cap     int
	ttl     time.Duration
	stop    chan struct{}
	stopped bool
	now     func() time.Time
}

// NewStore builds a Store and starts its expiry sweep. Sessions older than
// ttl are removed; each user keeps at most cap live sessions.
func NewStore(cap int, ttl time.Duration) *Store {
	s := &Store{
		byID: make(map[string]*Session),
		cap:  cap,
		ttl:  ttl,
		stop: make(chan struct{}),
		now:  time.Now,
	}
	go s.sweepLoop()
	return s
}

// Create inserts a new session, evicting the user's oldest one first when
// the per-user cap is already reached.
func (s *Store) Create(userID, displayName, credential, fileID, nodeID string) *Session {
	sess := &Session{
		ID:                uuid.NewString(),
		UserID:            userID,
		DisplayName:       displayName,
		StorageCredential: credential,
		FileID:            fileID,
		NodeID:            nodeID,
		CreatedAt:         s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap > 0 {
		for s.countLocked(userID) >= s.cap {
			s.evictOldestLocked(userID)
		}
	}
	s.byID[sess.ID] = sess
	return sess
}

// Get returns the live session for id, or false when it was never created
// or has been evicted.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.CreatedAt) > s.ttl {
		delete(s.byID, id)
		return nil, false
	}
	return sess, true
}

// Delete removes a session explicitly.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Close stops the background sweep.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
}

func (s *Store) countLocked(userID string) int {
	n := 0
	for _, sess := range s.byID {
		if sess.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) evictOldestLocked(userID string) {
	var oldest *Session
	for _, sess := range s.byID {
		if sess.UserID != userID {
			continue
		}
		if oldest == nil || sess.CreatedAt.Before(oldest.CreatedAt) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.byID, oldest.ID)
	}
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Store) sweep() {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.byID {
		if sess.CreatedAt.Before(cutoff) {
			delete(s.byID, id)
		}
	}
}
