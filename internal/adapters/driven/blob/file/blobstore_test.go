package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docqa-labs/docqa-cli/internal/core/domain"
)

func TestBlobStore(t *testing.T) {
	ctx := context.Background()

	t.Run("store and read round trip", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir())
		require.NoError(t, err)

		locator, err := store.Store(ctx, "report.pdf", []byte("%PDF data"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(locator, "_report.pdf"))

		data, err := store.Read(ctx, locator)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF data"), data)
	})

	t.Run("same name gets distinct locators", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir())
		require.NoError(t, err)

		first, err := store.Store(ctx, "report.pdf", []byte("one"))
		require.NoError(t, err)
		second, err := store.Store(ctx, "report.pdf", []byte("two"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)

		data, err := store.Read(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), data)
	})

	t.Run("read missing blob", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir())
		require.NoError(t, err)

		_, err = store.Read(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		store, err := NewBlobStore(t.TempDir())
		require.NoError(t, err)

		locator, err := store.Store(ctx, "report.pdf", []byte("data"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, locator))

		_, err = store.Read(ctx, locator)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, store.Delete(ctx, locator), domain.ErrNotFound)
	})

	t.Run("path traversal in names is neutralised", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewBlobStore(filepath.Join(dir, "blobs"))
		require.NoError(t, err)

		locator, err := store.Store(ctx, "../../escape.txt", []byte("data"))
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(locator, "_escape.txt"))

		entries, err := os.ReadDir(filepath.Join(dir, "blobs"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
