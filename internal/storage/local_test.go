package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arzan03/DocBridge/internal/httperr"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestLocalRoundTrip(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Upload(ctx, "", "/docs/a.odt", []byte("hello"), "text/plain")
	require.NoError(t, err)

	data, err := l.Download(ctx, "", "/docs/a.odt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	meta, err := l.Metadata(ctx, "", "/docs/a.odt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.NotEqual(t, "0", meta.Version)
}

func TestLocalVersionIncreasesAcrossUploads(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	first, err := l.Upload(ctx, "", "/v.odt", []byte("one"), "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := l.Upload(ctx, "", "/v.odt", []byte("two"), "")
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)
}

func TestLocalMissingFileIsNotFound(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Download(ctx, "", "/nope.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))

	_, err = l.Metadata(ctx, "", "/nope.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))

	err = l.Delete(ctx, "", "/nope.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))

	err = l.Rename(ctx, "", "/nope.odt", "/still-nope.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))
}

func TestLocalRename(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Upload(ctx, "", "/docs/old.odt", []byte("content"), "")
	require.NoError(t, err)
	require.NoError(t, l.Rename(ctx, "", "/docs/old.odt", "/docs/new.odt"))

	_, err = l.Download(ctx, "", "/docs/old.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))

	data, err := l.Download(ctx, "", "/docs/new.odt")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)
}

func TestLocalDelete(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Upload(ctx, "", "/gone.odt", []byte("x"), "")
	require.NoError(t, err)
	require.NoError(t, l.Delete(ctx, "", "/gone.odt"))

	_, err = l.Download(ctx, "", "/gone.odt")
	assert.True(t, errors.Is(err, httperr.ErrNotFound))
}

func TestLocalListNewestFirst(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	_, err := l.Upload(ctx, "", "/docs/first.odt", []byte("1"), "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = l.Upload(ctx, "", "/docs/second.ods", []byte("22"), "")
	require.NoError(t, err)

	entries, err := l.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/docs/second.ods", entries[0].Path)
	assert.Equal(t, "second.ods", entries[0].Name)
	assert.Equal(t, int64(2), entries[0].Size)
	assert.Equal(t, "/docs/first.odt", entries[1].Path)

	limited, err := l.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMimeForName(t *testing.T) {
	assert.Equal(t, "application/vnd.oasis.opendocument.text", MimeForName("report.odt"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", MimeForName("SHEET.XLSX"))
	assert.Equal(t, "text/plain", MimeForName("notes.txt"))
	assert.Equal(t, "application/octet-stream", MimeForName("blob.bin"))
}
