// Package httperr contains sentinel errors used across layers for stable error mapping.
package httperr

import "errors"

// Common sentinels shared by the protocol, auth, and storage layers.
var (
	// ErrValidation indicates a malformed file identifier or filename.
	ErrValidation = errors.New("validation failed")

	// ErrAuth indicates a missing, invalid, expired, or orphaned token.
	ErrAuth = errors.New("unauthorized")

	// ErrNotFound indicates the requested file or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstream indicates every storage strategy or the editor endpoint failed.
	ErrUpstream = errors.New("upstream unavailable")

	// ErrRateLimited indicates the client exhausted its window budget.
	ErrRateLimited = errors.New("rate limited")
)

// LockConflict reports a lock operation presented against the wrong token.
// Current carries the real holder's token so the client can reconcile;
// it is empty when the conflict is "expected a lock but the file is unlocked".
type LockConflict struct {
	Current string
}

func (e *LockConflict) Error() string {
	return "lock conflict"
}
