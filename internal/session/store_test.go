package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(cap int, ttl time.Duration) (*Store, *time.Time) {
	s := NewStore(cap, ttl)
	now := time.Now()
	s.now = func() time.Time { return now }
	return s, &now
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)
	defer s.Close()

	sess := s.Create("u1", "User One", "key:secret", "fid", "/docs/a.odt")
	require.NotEmpty(t, sess.ID)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "User One", got.DisplayName)
	assert.Equal(t, "key:secret", got.StorageCredential)
	assert.Equal(t, "/docs/a.odt", got.NodeID)
}

func TestGetUnknownSession(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)
	defer s.Close()

	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestPerUserCapEvictsOldest(t *testing.T) {
	s, now := newTestStore(2, time.Hour)
	defer s.Close()

	first := s.Create("u1", "n", "", "f1", "/1")
	*now = now.Add(time.Second)
	second := s.Create("u1", "n", "", "f2", "/2")
	*now = now.Add(time.Second)
	third := s.Create("u1", "n", "", "f3", "/3")

	_, ok := s.Get(first.ID)
	assert.False(t, ok, "oldest session must be evicted at the cap")
	_, ok = s.Get(second.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
}

func TestCapIsPerUser(t *testing.T) {
	s, _ := newTestStore(1, time.Hour)
	defer s.Close()

	a := s.Create("u1", "n", "", "f1", "/1")
	b := s.Create("u2", "n", "", "f2", "/2")

	_, ok := s.Get(a.ID)
	assert.True(t, ok, "another user's sessions must not count toward the cap")
	_, ok = s.Get(b.ID)
	assert.True(t, ok)
}

func TestExpiredSessionIsGone(t *testing.T) {
	s, now := newTestStore(4, time.Hour)
	defer s.Close()

	sess := s.Create("u1", "n", "", "f1", "/1")
	*now = now.Add(2 * time.Hour)

	_, ok := s.Get(sess.ID)
	assert.False(t, ok, "a session older than the TTL is invalid even before the sweep runs")
}

func TestSweepRemovesExpired(t *testing.T) {
	s, now := newTestStore(4, time.Hour)
	defer s.Close()

	s.Create("u1", "n", "", "f1", "/1")
	*now = now.Add(2 * time.Hour)
	fresh := s.Create("u1", "n", "", "f2", "/2")

	s.sweep()
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(fresh.ID)
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(4, time.Hour)
	defer s.Close()

	sess := s.Create("u1", "n", "", "f1", "/1")
	s.Delete(sess.ID)
	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
}
