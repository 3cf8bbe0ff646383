package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crumbhouse/bakery-api/internal/config"
	"github.com/crumbhouse/bakery-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStorageInterfaceCompliance(t *testing.T) {
	var _ storage.Storage = (*storage.LocalStorage)(nil)
	var _ storage.Storage = (*storage.AzureBlobStorage)(nil)
}

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	basePath := filepath.Join(t.TempDir(), "uploads")

	ls, err := storage.NewLocalStorage(basePath)
	require.NoError(t, err)
	assert.NotNil(t, ls)

	info, err := os.Stat(basePath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("not really a jpeg")
	key, size, err := ls.Put(ctx, "products/", "Croissant.JPG", "image/jpeg", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), size)
	assert.True(t, strings.HasPrefix(key, "products/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, err := ls.Get(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, content, got)

	require.NoError(t, ls.Delete(ctx, key))
	_, err = ls.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	// deleting twice is fine
	assert.NoError(t, ls.Delete(ctx, key))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	ls, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "/etc/passwd", ""} {
		_, err := ls.Get(context.Background(), key)
		assert.Error(t, err, key)
		assert.NotErrorIs(t, err, storage.ErrObjectNotFound, key)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	local, err := storage.New(&config.StorageConfig{Mode: "local", LocalBasePath: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, local)

	_, err = storage.New(&config.StorageConfig{Mode: "azure"}, zap.NewNop())
	assert.Error(t, err)

	_, err = storage.New(&config.StorageConfig{Mode: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
