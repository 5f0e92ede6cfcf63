package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore implements ObjectStore over an in-memory key list.
type fakeStore struct {
	keys        []string
	listedKeys  []string
	downloadErr error
	contents    string
}

func (f *fakeStore) Head(ctx context.Context, key string) error {
	for _, k := range f.keys {
		if k == key {
			return nil
		}
	}
	return ErrObjectNotFound
}

func (f *fakeStore) List(ctx context.Context, fn func(key string) bool) error {
	for _, k := range f.keys {
		f.listedKeys = append(f.listedKeys, k)
		if !fn(k) {
			return nil
		}
	}
	return nil
}

func (f *fakeStore) Download(ctx context.Context, key string, dst string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(dst, []byte(f.contents), 0o644)
}

func newTestResolver(store ObjectStore) *Resolver {
	return NewResolver(store, zap.NewNop())
}

func TestResolveExactKeySkipsEnumeration(t *testing.T) {
	store := &fakeStore{keys: []string{"invoices/Jan-INV001.pdf", "INV002.pdf"}}
	r := newTestResolver(store)

	key, err := r.Resolve(context.Background(), "INV002.pdf")
	require.NoError(t, err)
	assert.Equal(t, "INV002.pdf", key)
	assert.Empty(t, store.listedKeys, "exact match must not enumerate the bucket")
}

func TestResolveSuffixShortCircuits(t *testing.T) {
	store := &fakeStore{keys: []string{
		"misc/readme.txt",
		"invoices/Jan-INV001.pdf",
		"invoices/Feb-INV009.pdf",
	}}
	r := newTestResolver(store)

	key, err := r.Resolve(context.Background(), "INV001.pdf")
	require.NoError(t, err)
	assert.Equal(t, "invoices/Jan-INV001.pdf", key)
	// Enumeration stops at the suffix hit.
	assert.Len(t, store.listedKeys, 2)
}

func TestResolveBasenameCaseInsensitive(t *testing.T) {
	store := &fakeStore{keys: []string{
		"invoices/other.pdf",
		"invoices/INV001.PDF",
	}}
	r := newTestResolver(store)

	key, err := r.Resolve(context.Background(), "inv001.pdf")
	require.NoError(t, err)
	assert.Equal(t, "invoices/INV001.PDF", key)
}

func TestResolveSubstringWeakestTier(t *testing.T) {
	store := &fakeStore{keys: []string{
		"archive/2024-001-batch.pdf",
		"archive/unrelated.pdf",
	}}
	r := newTestResolver(store)

	key, err := r.Resolve(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, "archive/2024-001-batch.pdf", key)
}

func TestResolveSuffixSupersedesEarlierSubstring(t *testing.T) {
	// A substring candidate seen first must lose to a suffix hit seen later.
	store := &fakeStore{keys: []string{
		"archive/INV001-copy.pdf",
		"invoices/Jan-INV001.pdf",
	}}
	r := newTestResolver(store)

	key, err := r.Resolve(context.Background(), "INV001.pdf")
	require.NoError(t, err)
	assert.Equal(t, "invoices/Jan-INV001.pdf", key)
}

func TestResolveMissReportsNotFound(t *testing.T) {
	store := &fakeStore{keys: []string{"something-else.pdf"}}
	r := newTestResolver(store)

	_, err := r.Resolve(context.Background(), "INV999.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestFetchStagesFileNamedAfterKeyBasename(t *testing.T) {
	store := &fakeStore{
		keys:     []string{"invoices/Jan-INV001.pdf"},
		contents: "pdf-bytes",
	}
	r := newTestResolver(store)
	dir := t.TempDir()

	art, err := r.Fetch(context.Background(), "INV001.pdf", dir)
	require.NoError(t, err)
	assert.Equal(t, "invoices/Jan-INV001.pdf", art.Key)
	assert.Equal(t, filepath.Join(dir, "Jan-INV001.pdf"), art.LocalPath)

	data, err := os.ReadFile(art.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))

	art.Cleanup()
	_, err = os.Stat(art.LocalPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFetchTransferFailureLeavesNothingBehind(t *testing.T) {
	store := &fakeStore{
		keys:        []string{"invoices/Jan-INV001.pdf"},
		downloadErr: errors.New("connection reset"),
	}
	r := newTestResolver(store)
	dir := t.TempDir()

	_, err := r.Fetch(context.Background(), "INV001.pdf", dir)
	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanupTolerantOfNilAndMissing(t *testing.T) {
	var nilArt *Artifact
	nilArt.Cleanup()

	art := &Artifact{LocalPath: filepath.Join(t.TempDir(), "never-written.pdf")}
	art.Cleanup()
	art.Cleanup()
}
