// Package auth issues and validates the scoped access tokens that tie an
// editor session to one file, and verifies the user credential handed to
// the frontend API by the identity provider.
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/session"
)

// MaxTokenTTL caps the expiry of any issued access token.
const MaxTokenTTL = 24 * time.Hour

// UserClaims is what the identity provider asserts about a user. Drive is
// the brokered storage credential; it goes into the session and nowhere else.
type UserClaims struct {
	Subject     string
	DisplayName string
	Drive       string
}

// Manager signs access tokens and binds them to live sessions.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	sessions *session.Store
	now      func() time.Time
}

// NewManager builds a Manager. ttl is clamped to MaxTokenTTL.
func NewManager(secret string, ttl time.Duration, sessions *session.Store) *Manager {
	if ttl <= 0 || ttl > MaxTokenTTL {
		ttl = MaxTokenTTL
	}
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: sessions,
		now:      time.Now,
	}
}

// TTL reports the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session and returns a signed token scoped to one file.
func (m *Manager) Issue(userID, displayName, fileID, nodeID, credential string) (string, *session.Session, error) {
	sess := m.sessions.Create(userID, displayName, credential, fileID, nodeID)

	claims := jwt.MapClaims{
		"sid": sess.ID,
		"fid": fileID,
		"nid": nodeID,
		"exp": m.now().Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		m.sessions.Delete(sess.ID)
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}
	return signed, sess, nil
}

// Validate verifies signature and expiry, checks the file binding, and then
// requires a live session. A syntactically valid token whose session has
// been evicted is an auth failure, not a stale success.
func (m *Manager) Validate(tokenString, fileID string) (*session.Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", httperr.ErrAuth)
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", httperr.ErrAuth)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", httperr.ErrAuth)
	}
	sid, _ := claims["sid"].(string)
	fid, _ := claims["fid"].(string)
	if sid == "" || fid == "" {
		return nil, fmt.Errorf("%w: invalid token payload", httperr.ErrAuth)
	}
	if fileID != "" && fid != fileID {
		return nil, fmt.Errorf("%w: token not scoped to this file", httperr.ErrAuth)
	}
	sess, live := m.sessions.Get(sid)
	if !live {
		return nil, fmt.Errorf("%w: session no longer exists", httperr.ErrAuth)
	}
	return sess, nil
}

// VerifyUserToken checks a Bearer credential from the identity provider and
// extracts the user claims, including the brokered storage credential.
func (m *Manager) VerifyUserToken(authorization string) (UserClaims, error) {
	if authorization == "" {
		return UserClaims{}, fmt.Errorf("%w: missing bearer token", httperr.ErrAuth)
	}
	tokenString := strings.TrimPrefix(authorization, "Bearer ")
	if tokenString == "" {
		return UserClaims{}, fmt.Errorf("%w: invalid token format", httperr.ErrAuth)
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return UserClaims{}, fmt.Errorf("%w: invalid user token", httperr.ErrAuth)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, fmt.Errorf("%w: invalid user claims", httperr.ErrAuth)
	}
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	drive, _ := claims["drive"].(string)
	if sub == "" {
		return UserClaims{}, fmt.Errorf("%w: user token has no subject", httperr.ErrAuth)
	}
	if name == "" {
		name = sub
	}
	return UserClaims{Subject: sub, DisplayName: name, Drive: drive}, nil
}
