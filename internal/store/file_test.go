package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playbill/playbill/internal/store"
)

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	data := []byte(`{"columns":{},"view":{"row_order":null,"column_order":null}}`)
	require.NoError(t, s.WriteDocument(ctx, "favorites", data))

	got, err := s.ReadDocument(ctx, "favorites")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFileStoreMissingDocument(t *testing.T) {
	s := newFileStore(t)

	got, err := s.ReadDocument(context.Background(), "never-written")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreOverwrite(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteDocument(ctx, "doc", []byte("first")))
	require.NoError(t, s.WriteDocument(ctx, "doc", []byte("second")))

	got, err := s.ReadDocument(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func TestFileStoreNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(store.Options{Dir: dir})
	require.NoError(t, err)

	require.NoError(t, s.WriteDocument(context.Background(), "doc", []byte("data")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestFileStoreSanitizesStoreID(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteDocument(ctx, "a/b:c", []byte("data")))

	got, err := s.ReadDocument(ctx, "a/b:c")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	ids, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b_c"}, ids)
}

func TestFileStoreList(t *testing.T) {
	s := newFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteDocument(ctx, "one", []byte("1")))
	require.NoError(t, s.WriteDocument(ctx, "two", []byte("2")))

	ids, err := s.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, ids)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := store.Open("cassette", store.Options{Dir: t.TempDir()})
	assert.Error(t, err)
}

func TestOpenDefaultsToFile(t *testing.T) {
	gw, err := store.Open("", store.Options{Dir: t.TempDir()})
	require.NoError(t, err)
	defer gw.Close()
	assert.IsType(t, &store.FileStore{}, gw)
}
