// Package secure validates the identifiers and filenames that cross the
// protocol boundary before any storage operation sees them.
package secure

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/arzan03/DocBridge/internal/httperr"
)

// maxFileIDLength bounds the raw identifier before decoding.
const maxFileIDLength = 512

// sensitivePrefixes are absolute path roots a decoded fileId may never reach.
var sensitivePrefixes = []string{
	"/etc/", "/proc/", "/sys/", "/dev/", "/root/", "/var/", "/usr/", "/bin/", "/boot/",
}

// EncodeFileID derives the opaque routing key for a storage path.
// The encoding is reversible; DecodeFileID recovers the path.
func EncodeFileID(storagePath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(storagePath))
}

// DecodeFileID reverses EncodeFileID and rejects any identifier whose decoded
// path could escape the storage root: parent-directory segments, null bytes,
// control characters, or sensitive absolute prefixes.
func DecodeFileID(raw string) (string, error) {
	if raw == "" || len(raw) > maxFileIDLength {
		return "", fmt.Errorf("%w: file id length out of bounds", httperr.ErrValidation)
	}
	for _, r := range raw {
		if !isBase64URLChar(r) {
			return "", fmt.Errorf("%w: file id contains invalid characters", httperr.ErrValidation)
		}
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: file id is not decodable", httperr.ErrValidation)
	}
	p := string(decoded)
	if err := checkStoragePath(p); err != nil {
		return "", err
	}
	return p, nil
}

// checkStoragePath enforces the invariants shared by decoded fileIds and
// caller-supplied storage paths.
func checkStoragePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", httperr.ErrValidation)
	}
	if strings.ContainsRune(p, 0) {
		return fmt.Errorf("%w: path contains null byte", httperr.ErrValidation)
	}
	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("%w: path contains control characters", httperr.ErrValidation)
		}
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("%w: path contains backslash", httperr.ErrValidation)
	}
	if len(p) >= 2 && p[1] == ':' && isDriveLetter(p[0]) {
		return fmt.Errorf("%w: path uses a drive prefix", httperr.ErrValidation)
	}
	for _, segment := range strings.Split(p, "/") {
		if segment == ".." {
			return fmt.Errorf("%w: path contains parent-directory segment", httperr.ErrValidation)
		}
	}
	lower := strings.ToLower(p)
	for _, prefix := range sensitivePrefixes {
		if strings.HasPrefix(lower, prefix) || lower == strings.TrimSuffix(prefix, "/") {
			return fmt.Errorf("%w: path reaches a sensitive location", httperr.ErrValidation)
		}
	}
	return nil
}

// NormalizeStoragePath validates a caller-supplied path and returns its
// cleaned, slash-rooted form. Used by the frontend API before encoding.
func NormalizeStoragePath(raw string) (string, error) {
	if err := checkStoragePath(raw); err != nil {
		return "", err
	}
	p := path.Clean("/" + strings.TrimPrefix(raw, "/"))
	if p == "/" {
		return "", fmt.Errorf("%w: path names no file", httperr.ErrValidation)
	}
	// Clean can only remove traversal, never introduce it, but the sensitive
	// prefix check must run against the final form.
	if err := checkStoragePath(p); err != nil {
		return "", err
	}
	return p, nil
}

func isDriveLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isBase64URLChar(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}
