package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/arzan03/DocBridge/internal/httperr"
)

// Local is the disk-backed strategy. Files are keyed by the encoded form of
// their storage path so the cache directory stays flat and traversal-proof.
type Local struct {
	root string
}

// NewLocal ensures the cache directory exists.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) filePath(node string) string {
	return filepath.Join(l.root, base64.RawURLEncoding.EncodeToString([]byte(node)))
}

func (l *Local) Metadata(_ context.Context, _, node string) (Metadata, error) {
	info, err := os.Stat(l.filePath(node))
	if err != nil {
		return Metadata{}, localErr(err)
	}
	return Metadata{
		Size:       info.Size(),
		Version:    fmt.Sprintf("%d", info.ModTime().UnixNano()),
		ModifiedAt: info.ModTime(),
	}, nil
}

func (l *Local) Download(_ context.Context, _, node string) ([]byte, error) {
	data, err := os.ReadFile(l.filePath(node))
	if err != nil {
		return nil, localErr(err)
	}
	return data, nil
}

func (l *Local) Upload(_ context.Context, _, node string, data []byte, _ string) (PutResult, error) {
	p := l.filePath(node)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return PutResult{}, localErr(err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return PutResult{}, localErr(err)
	}
	return PutResult{Version: fmt.Sprintf("%d", info.ModTime().UnixNano())}, nil
}

func (l *Local) Rename(_ context.Context, _, node, newNode string) error {
	if _, err := os.Stat(l.filePath(node)); err != nil {
		return localErr(err)
	}
	if err := os.Rename(l.filePath(node), l.filePath(newNode)); err != nil {
		return localErr(err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, _, node string) error {
	if err := os.Remove(l.filePath(node)); err != nil {
		return localErr(err)
	}
	return nil
}

func (l *Local) List(_ context.Context, _ string, limit int) ([]Entry, error) {
	dirEntries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, localErr(err)
	}
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(de.Name())
		if err != nil {
			continue // not one of ours
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		node := string(decoded)
		entries = append(entries, Entry{
			Path:       node,
			Name:       path.Base(node),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ModifiedAt.After(entries[j].ModifiedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func localErr(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %v", httperr.ErrNotFound, err)
	}
	return fmt.Errorf("local disk: %w", err)
}
