package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/session"
)

const testSecret = "unit-test-secret"

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, *session.Store) {
	t.Helper()
	sessions := session.NewStore(4, ttl)
	t.Cleanup(sessions.Close)
	return NewManager(testSecret, ttl, sessions), sessions
}

func TestIssueAndValidate(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	token, sess, err := m.Issue("u1", "User One", "fid1", "/docs/a.odt", "key:secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := m.Validate(token, "fid1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, "key:secret", got.StorageCredential)
	assert.Equal(t, "/docs/a.odt", got.NodeID)
}

func TestValidateRejectsWrongFileBinding(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	token, _, err := m.Issue("u1", "User One", "fid1", "/docs/a.odt", "")
	require.NoError(t, err)

	_, err = m.Validate(token, "other-file")
	assert.True(t, errors.Is(err, httperr.ErrAuth))
}

func TestValidateRejectsMissingAndGarbageTokens(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	_, err := m.Validate("", "fid1")
	assert.True(t, errors.Is(err, httperr.ErrAuth))

	_, err = m.Validate("not.a.jwt", "fid1")
	assert.True(t, errors.Is(err, httperr.ErrAuth))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	claims := jwt.MapClaims{
		"sid": "some-session",
		"fid": "fid1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = m.Validate(forged, "fid1")
	assert.True(t, errors.Is(err, httperr.ErrAuth))
}

func TestOrphanedTokenIsAuthError(t *testing.T) {
	m, sessions := newTestManager(t, time.Hour)

	token, sess, err := m.Issue("u1", "User One", "fid1", "/docs/a.odt", "")
	require.NoError(t, err)

	// the signature still verifies, but the session is gone
	sessions.Delete(sess.ID)
	_, err = m.Validate(token, "fid1")
	assert.True(t, errors.Is(err, httperr.ErrAuth))
}

func TestExpiredTokenIsAuthError(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Issue("u1", "User One", "fid1", "/docs/a.odt", "")
	require.NoError(t, err)

	_, err = m.Validate(token, "fid1")
	assert.True(t, errors.Is(err, httperr.ErrAuth), "token past its TTL must fail even though the session exists")
}

func TestTTLClampedToMaximum(t *testing.T) {
	sessions := session.NewStore(4, time.Hour)
	t.Cleanup(sessions.Close)

	m := NewManager(testSecret, 1000*time.Hour, sessions)
	assert.Equal(t, MaxTokenTTL, m.TTL())

	m = NewManager(testSecret, 0, sessions)
	assert.Equal(t, MaxTokenTTL, m.TTL())
}

func userToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyUserToken(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	token := userToken(t, testSecret, jwt.MapClaims{
		"sub":   "u1",
		"name":  "User One",
		"drive": "key:secret",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	claims, err := m.VerifyUserToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "User One", claims.DisplayName)
	assert.Equal(t, "key:secret", claims.Drive)
}

func TestVerifyUserTokenFallsBackToSubject(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	token := userToken(t, testSecret, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	claims, err := m.VerifyUserToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.DisplayName)
}

func TestVerifyUserTokenRejectsBadInput(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)

	_, err := m.VerifyUserToken("")
	assert.True(t, errors.Is(err, httperr.ErrAuth))

	_, err = m.VerifyUserToken("Bearer ")
	assert.True(t, errors.Is(err, httperr.ErrAuth))

	noSubject := userToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = m.VerifyUserToken("Bearer " + noSubject)
	assert.True(t, errors.Is(err, httperr.ErrAuth))
}
