package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePixels() []byte {
	px := make([]byte, 512*256)
	for i := range px {
		px[i] = byte(i % 16)
	}
	return px
}

func TestAtlasKey(t *testing.T) {
	a := AtlasKey([]byte("tiles-v1"))
	b := AtlasKey([]byte("tiles-v2"))

	assert.Equal(t, a, AtlasKey([]byte("tiles-v1")))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("atlas:")+16)
	assert.Equal(t, "atlas:", a[:6])
}

func TestMemoryAtlasRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAtlasRepo()
	stream := []byte("compressed")

	_, found, err := repo.Load(ctx, stream)
	require.NoError(t, err)
	assert.False(t, found)

	px := samplePixels()
	require.NoError(t, repo.Store(ctx, stream, px))

	// хранилище держит собственную копию
	px[0] = 0xFF
	loaded, found, err := repo.Load(ctx, stream)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, byte(0), loaded[0])
	assert.Equal(t, 1, repo.Len())

	require.NoError(t, repo.Delete(ctx, stream))
	assert.Equal(t, 0, repo.Len())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, repo.Store(cancelled, stream, px))
}

func TestNopAtlasRepo(t *testing.T) {
	var repo AtlasRepo = NopAtlasRepo{}
	require.NoError(t, repo.Store(context.Background(), []byte("x"), []byte("y")))
	_, found, err := repo.Load(context.Background(), []byte("x"))
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestBadgerAtlasRepoPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	stream := []byte("TILES.16 contents")
	px := samplePixels()

	repo, err := NewBadgerAtlasRepo(dir)
	require.NoError(t, err)

	_, found, err := repo.Load(ctx, stream)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Store(ctx, stream, px))
	require.NoError(t, repo.Close())

	// повторное открытие видит сохранённую запись
	repo, err = NewBadgerAtlasRepo(dir)
	require.NoError(t, err)
	defer repo.Close()

	loaded, found, err := repo.Load(ctx, stream)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, bytes.Equal(px, loaded))

	_, found, err = repo.Load(ctx, []byte("other stream"))
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Delete(ctx, stream))
	_, found, err = repo.Load(ctx, stream)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBadgerAtlasRepoClosed(t *testing.T) {
	repo, err := NewBadgerAtlasRepo(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close())

	_, _, err = repo.Load(context.Background(), []byte("x"))
	assert.True(t, errors.Is(err, ErrNotReady))
	assert.True(t, errors.Is(repo.Store(context.Background(), []byte("x"), nil), ErrNotReady))
}

func TestOpenAtlasRepo(t *testing.T) {
	repo, err := OpenAtlasRepo(false, "")
	require.NoError(t, err)
	assert.IsType(t, NopAtlasRepo{}, repo)

	repo, err = OpenAtlasRepo(true, t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &BadgerAtlasRepo{}, repo)
	assert.NoError(t, repo.Close())
}
