package secure

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// maxFilenameLength caps sanitized names; the extension survives truncation.
const maxFilenameLength = 200

// illegalFilenameChars are replaced with underscores; the set covers the
// union of characters rejected by common filesystems.
const illegalFilenameChars = `<>:"/\|?*`

// SanitizeFilename reduces a requested name to a safe basename. Directory
// separators and control characters are stripped, leading and trailing dots
// and whitespace trimmed, illegal characters replaced. Returns "" when
// nothing usable remains.
func SanitizeFilename(raw string) string {
	name := raw
	// Keep only the final path element of whatever was sent.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		return ""
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			// drop control characters
		case strings.ContainsRune(illegalFilenameChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), ". \t")
	if name == "" {
		return ""
	}
	if len(name) > maxFilenameLength {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameLength {
			ext = ""
		}
		cut := maxFilenameLength - len(ext)
		// back off to a rune boundary so truncation never splits a multi-byte
		// character
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut] + ext
	}
	return name
}
