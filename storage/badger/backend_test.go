package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/wheretobuy/core"
	"github.com/poiesic/wheretobuy/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_FileInTheWay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	assert.Error(t, err)
}

func TestBackend_ClosedOperations(t *testing.T) {
	products, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	require.NoError(t, products.Close())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
	assert.NoError(t, backend.Close(), "second close is a no-op")

	_, err = products.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repos, err := Open(dir)
	require.NoError(t, err)
	added, err := repos.Products.AddProducts(ctx, &core.Product{Name: "Old Oak Reserve", Producer: "Acme"})
	require.NoError(t, err)
	id := added[0].Id
	require.NoError(t, repos.Close())

	repos, err = Open(dir)
	require.NoError(t, err)
	defer repos.Close()

	got, err := repos.Products.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Old Oak Reserve", got.Name)
}
