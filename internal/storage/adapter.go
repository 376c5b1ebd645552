package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/arzan03/DocBridge/internal/httperr"
	"github.com/arzan03/DocBridge/internal/utils"
)

// Adapter walks an ordered strategy chain. Strategy order is the fallback
// order: remote first when enabled, local disk last. Every decision about
// which strategy served a request is logged by name so failures are precise.
type Adapter struct {
	strategies []Strategy
	log        *zap.Logger
}

// NewAdapter composes strategies in fallback order.
func NewAdapter(log *zap.Logger, strategies ...Strategy) *Adapter {
	return &Adapter{strategies: strategies, log: log}
}

// Metadata returns document metadata from the first strategy that has the
// node. A node no strategy has yet is reported as an empty, version-zero
// document: first open of a brand-new file must not fail.
func (a *Adapter) Metadata(ctx context.Context, cred, node string) (Metadata, error) {
	missed := false
	for _, s := range a.strategies {
		meta, err := s.Metadata(ctx, cred, node)
		if err == nil {
			return meta, nil
		}
		if errors.Is(err, httperr.ErrNotFound) {
			missed = true
			continue
		}
		a.log.Warn("metadata strategy failed",
			zap.String("strategy", s.Name()), zap.Error(err))
	}
	if missed {
		return Metadata{Size: 0, Version: "0", ModifiedAt: time.Now().UTC()}, nil
	}
	return Metadata{}, fmt.Errorf("%w: all storage strategies failed", httperr.ErrUpstream)
}

// Download returns the content bytes from the first strategy that has them,
// or empty bytes for a not-yet-materialized document.
func (a *Adapter) Download(ctx context.Context, cred, node string) ([]byte, error) {
	missed := false
	for _, s := range a.strategies {
		data, err := s.Download(ctx, cred, node)
		if err == nil {
			a.log.Debug("download served", zap.String("strategy", s.Name()), zap.String("node", node))
			return data, nil
		}
		if errors.Is(err, httperr.ErrNotFound) {
			missed = true
			continue
		}
		a.log.Warn("download strategy failed",
			zap.String("strategy", s.Name()), zap.Error(err))
	}
	if missed {
		return []byte{}, nil
	}
	return nil, fmt.Errorf("%w: all storage strategies failed", httperr.ErrUpstream)
}

// Upload persists the bytes to the first strategy that accepts them. The
// write is acknowledged once one strategy has it durably; a remote failure
// falls through to local disk rather than losing the write.
func (a *Adapter) Upload(ctx context.Context, cred, node string, data []byte, mimeHint string) (PutResult, error) {
	for _, s := range a.strategies {
		res, err := s.Upload(ctx, cred, node, data, mimeHint)
		if err == nil {
			a.log.Info("upload persisted",
				zap.String("strategy", s.Name()), zap.String("node", node), zap.Int("bytes", len(data)))
			return res, nil
		}
		a.log.Warn("upload strategy failed, falling through",
			zap.String("strategy", s.Name()), zap.Error(err))
	}
	return PutResult{}, fmt.Errorf("%w: write not persisted by any strategy", httperr.ErrUpstream)
}

// CreateEmpty materializes a zero-byte document at node.
func (a *Adapter) CreateEmpty(ctx context.Context, cred, node, mimeHint string) (PutResult, error) {
	return a.Upload(ctx, cred, node, []byte{}, mimeHint)
}

// Rename gives the node a new basename in its directory and returns the new
// node path. Applied to every strategy that has the object.
func (a *Adapter) Rename(ctx context.Context, cred, node, newName string) (string, error) {
	newNode := path.Join(path.Dir(node), newName)
	renamed, missed := 0, 0
	for _, s := range a.strategies {
		err := s.Rename(ctx, cred, node, newNode)
		switch {
		case err == nil:
			renamed++
		case errors.Is(err, httperr.ErrNotFound):
			missed++
		default:
			a.log.Warn("rename strategy failed",
				zap.String("strategy", s.Name()), zap.Error(err))
		}
	}
	switch {
	case renamed > 0:
		return newNode, nil
	case missed == len(a.strategies):
		return "", fmt.Errorf("%w: %s", httperr.ErrNotFound, node)
	default:
		return "", fmt.Errorf("%w: rename failed on every strategy", httperr.ErrUpstream)
	}
}

// Delete removes the node from all strategies in parallel.
func (a *Adapter) Delete(ctx context.Context, cred, node string) error {
	tasks := make([]utils.ParallelTask, len(a.strategies))
	for i, s := range a.strategies {
		s := s
		tasks[i] = func() (interface{}, error) {
			return nil, s.Delete(ctx, cred, node)
		}
	}
	_, errs := utils.RunParallelTasks(tasks)

	deleted, missed := 0, 0
	for i, err := range errs {
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, httperr.ErrNotFound):
			missed++
		default:
			a.log.Warn("delete strategy failed",
				zap.String("strategy", a.strategies[i].Name()), zap.Error(err))
		}
	}
	switch {
	case deleted > 0:
		return nil
	case missed == len(a.strategies):
		return fmt.Errorf("%w: %s", httperr.ErrNotFound, node)
	default:
		return fmt.Errorf("%w: delete failed on every strategy", httperr.ErrUpstream)
	}
}

// Recent lists recently modified documents from the first strategy able to
// answer.
func (a *Adapter) Recent(ctx context.Context, cred string, limit int) ([]Entry, error) {
	for _, s := range a.strategies {
		entries, err := s.List(ctx, cred, limit)
		if err == nil {
			return entries, nil
		}
		a.log.Warn("list strategy failed",
			zap.String("strategy", s.Name()), zap.Error(err))
	}
	return nil, fmt.Errorf("%w: no strategy could list files", httperr.ErrUpstream)
}
