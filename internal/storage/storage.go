// Package storage presents one file-operations contract over an ordered
// chain of strategies: the remote object store first (when enabled), then
// the local disk cache. Reads that miss every strategy synthesize empty
// content so a brand-new document never hard-fails on first open.
package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Metadata describes a stored document.
type Metadata struct {
	Size       int64
	Version    string
	ModifiedAt time.Time
}

// PutResult is returned from a successful upload. Version strictly
// increases across successive uploads of the same node.
type PutResult struct {
	Version string
}

// Entry is one row of a directory/recent listing.
type Entry struct {
	Path       string
	Name       string
	Size       int64
	ModifiedAt time.Time
}

// Strategy is one storage backend. node is the slash-rooted storage path.
// cred is the session's brokered credential; strategies that authenticate
// with service credentials ignore it.
type Strategy interface {
	Name() string
	Metadata(ctx context.Context, cred, node string) (Metadata, error)
	Download(ctx context.Context, cred, node string) ([]byte, error)
	Upload(ctx context.Context, cred, node string, data []byte, mimeHint string) (PutResult, error)
	Rename(ctx context.Context, cred, node, newNode string) error
	Delete(ctx context.Context, cred, node string) error
	List(ctx context.Context, cred string, limit int) ([]Entry, error)
}

// office document types the editor can create
var mimeTypes = map[string]string{
	".odt":  "application/vnd.oasis.opendocument.text",
	".ods":  "application/vnd.oasis.opendocument.spreadsheet",
	".odp":  "application/vnd.oasis.opendocument.presentation",
	".odg":  "application/vnd.oasis.opendocument.graphics",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
	".rtf":  "application/rtf",
	".csv":  "text/csv",
}

// MimeForName maps a filename to its document MIME type.
func MimeForName(name string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return "application/octet-stream"
}
