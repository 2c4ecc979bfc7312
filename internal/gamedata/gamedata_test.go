package gamedata

import (
	"bytes"
	"compress/lzw"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/storage"
	"github.com/annel0/dungeon-atlas/internal/tiles"
)

func tilesStream(t *testing.T, fill byte) []byte {
	t.Helper()

	packed := bytes.Repeat([]byte{fill}, tiles.Count*tiles.BytesPerTile)
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(packed))))
	w := lzw.NewWriter(&buf, lzw.LSB, 8)
	_, err := w.Write(packed)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

// newDataDir собирает минимальную установку: в DUNGEON.DAT у Deceit
// первый блок первого уровня - комната, у первой комнаты помечена клетка
func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	grid := make([]byte, dungeon.Levels*dungeon.GridBytes)
	grid[0] = 0xF3
	grid[dungeon.GridBytes] = 0xB0
	writeFile(t, dir, DungeonGridFile, grid)

	rooms := make([]byte, 7*dungeon.RoomCount*combat.RecordSize)
	rooms[0] = 0x44
	writeFile(t, dir, DungeonRoomsFile, rooms)

	writeFile(t, dir, OverworldFile, make([]byte, 2*combat.RecordSize))
	writeFile(t, dir, TilesFile, tilesStream(t, 0x71))
	return dir
}

func TestValidateDir(t *testing.T) {
	dir := t.TempDir()
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDataDir))

	require.NoError(t, os.Mkdir(filepath.Join(dir, OverworldFile), 0o755))
	assert.True(t, errors.Is(ValidateDir(dir), ErrInvalidDataDir))

	assert.NoError(t, ValidateDir(newDataDir(t)))
}

func TestLoadDungeons(t *testing.T) {
	ds, err := LoadDungeons(newDataDir(t))
	require.NoError(t, err)
	require.Len(t, ds, len(Table))

	for i, d := range ds {
		assert.Equal(t, Table[i].Name, d.Name)
		assert.Equal(t, Table[i].Kind, d.Kind)
	}
	assert.Equal(t, dungeon.Prison, ds[3].Kind)
	assert.Equal(t, dungeon.Mine, ds[4].Kind)

	assert.Equal(t, dungeon.Block{Kind: dungeon.Room, Payload: 3}, ds[0].Floors[0][0][0])
	assert.Equal(t, dungeon.Block{Kind: dungeon.Wall}, ds[1].Floors[0][0][0])
	assert.Equal(t, uint8(0x44), ds[0].Rooms[0].Area[0][0])

	// у Despise пустые комнаты, следующие комнаты файла достаются Destard
	for _, room := range ds[1].Rooms {
		require.NotNil(t, room)
		assert.Equal(t, combat.Empty().Area, room.Area)
	}
	assert.Equal(t, uint8(0), ds[2].Rooms[0].Area[0][0])
}

func TestLoadDungeonsBadFiles(t *testing.T) {
	dir := newDataDir(t)
	writeFile(t, dir, DungeonRoomsFile, make([]byte, 3*combat.RecordSize))
	_, err := LoadDungeons(dir)
	assert.True(t, errors.Is(err, combat.ErrDecode))

	dir = newDataDir(t)
	writeFile(t, dir, DungeonGridFile, make([]byte, 100))
	_, err = LoadDungeons(dir)
	assert.True(t, errors.Is(err, dungeon.ErrDecode))

	dir = newDataDir(t)
	writeFile(t, dir, DungeonGridFile, make([]byte, dungeon.GridBytes))
	_, err = LoadDungeons(dir)
	assert.True(t, errors.Is(err, dungeon.ErrDecode))

	_, err = LoadDungeons(t.TempDir())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadOverworldRooms(t *testing.T) {
	rooms, err := LoadOverworldRooms(newDataDir(t))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestLoadAtlasFillsCache(t *testing.T) {
	ctx := context.Background()
	dir := newDataDir(t)
	repo := storage.NewMemoryAtlasRepo()

	atlas, err := LoadAtlas(ctx, dir, repo)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, uint8(7), atlas.Index(300, 0, 0))
	assert.Equal(t, uint8(1), atlas.Index(300, 0, 1))

	again, err := LoadAtlas(ctx, dir, repo)
	require.NoError(t, err)
	assert.Equal(t, atlas.Pixels(), again.Pixels())
}

func TestLoadAtlasUsesCachedPixels(t *testing.T) {
	ctx := context.Background()
	dir := newDataDir(t)
	stream, err := os.ReadFile(filepath.Join(dir, TilesFile))
	require.NoError(t, err)

	px := make([]byte, tiles.Count*tiles.PixelsPerTile)
	px[300*tiles.PixelsPerTile] = 9
	repo := storage.NewMemoryAtlasRepo()
	require.NoError(t, repo.Store(ctx, stream, px))

	atlas, err := LoadAtlas(ctx, dir, repo)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), atlas.Index(300, 0, 0))
	assert.Equal(t, uint8(0), atlas.Index(300, 0, 1))
}

func TestLoadAtlasReplacesCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := newDataDir(t)
	stream, err := os.ReadFile(filepath.Join(dir, TilesFile))
	require.NoError(t, err)

	repo := storage.NewMemoryAtlasRepo()
	require.NoError(t, repo.Store(ctx, stream, []byte{1, 2, 3}))

	atlas, err := LoadAtlas(ctx, dir, repo)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), atlas.Index(300, 0, 0))

	cached, found, err := repo.Load(ctx, stream)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, cached, tiles.Count*tiles.PixelsPerTile)
}

func TestLoadAtlasCorruptStream(t *testing.T) {
	dir := newDataDir(t)
	writeFile(t, dir, TilesFile, []byte{0x00, 0x00})

	_, err := LoadAtlas(context.Background(), dir, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tiles.ErrCorruptStream))
}

func TestLoad(t *testing.T) {
	ds, err := Load(context.Background(), newDataDir(t), storage.NopAtlasRepo{})
	require.NoError(t, err)
	assert.Len(t, ds.Dungeons, 8)
	require.NotNil(t, ds.Atlas)

	_, err = Load(context.Background(), t.TempDir(), nil)
	assert.True(t, errors.Is(err, ErrInvalidDataDir))
}
