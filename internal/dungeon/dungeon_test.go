package dungeon

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/terrain"
)

// newTestDungeon строит подземелье, у которого уровень 0 задан floor,
// а остальные уровни - сплошной коридор
func newTestDungeon(t *testing.T, kind Kind, floor Floor, rooms ...*combat.CombatMap) *Dungeon {
	t.Helper()

	var floors [Levels]Floor
	floors[0] = floor

	all := make([]*combat.CombatMap, RoomCount)
	copy(all, rooms)

	d, err := New("test", kind, floors, all)
	require.NoError(t, err)
	return d
}

func TestNewRequiresSixteenRooms(t *testing.T) {
	_, err := New("broken", Cave, [Levels]Floor{}, make([]*combat.CombatMap, 15))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomCount))

	d, err := New("padded", Cave, [Levels]Floor{}, make([]*combat.CombatMap, RoomCount))
	require.NoError(t, err)
	for _, r := range d.Rooms {
		assert.NotNil(t, r)
	}
}

func TestResolveTileOutOfRange(t *testing.T) {
	d := newTestDungeon(t, Cave, Floor{})

	for _, c := range [][3]int{
		{-1, 0, 0}, {0, -1, 0}, {88, 0, 0}, {0, 88, 0}, {0, 0, -1}, {0, 0, 8},
	} {
		assert.Equal(t, TileData{}, d.ResolveTile(c[0], c[1], c[2]), "координаты %v", c)
	}
}

func TestResolveTileWallBlock(t *testing.T) {
	var f Floor
	f[3][3] = Block{Kind: Wall}
	d := newTestDungeon(t, Cave, f)

	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(33, 33, 0).Tile)
	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(38, 38, 0).Tile)

	// блок (4,3) справа от стены: кромка темнеет, следующий ряд - стена,
	// дальше пол
	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(44, 38, 0).Tile)
	assert.Equal(t, terrain.RocksTile, d.ResolveTile(45, 38, 0).Tile)
	assert.Equal(t, terrain.GrassTile, d.ResolveTile(46, 38, 0).Tile)

	// блок (3,4) снизу от стены
	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(38, 44, 0).Tile)
	assert.Equal(t, terrain.RocksTile, d.ResolveTile(38, 45, 0).Tile)
	assert.Equal(t, terrain.GrassTile, d.ResolveTile(38, 46, 0).Tile)
}

func TestResolveTileCorridorCorners(t *testing.T) {
	d := newTestDungeon(t, Prison, Floor{})

	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(0, 0, 0).Tile)
	assert.Equal(t, terrain.DarknessTile, d.ResolveTile(10, 10, 0).Tile)
	assert.Equal(t, terrain.BrickWallTile, d.ResolveTile(1, 1, 0).Tile)
	assert.Equal(t, terrain.BrickWallTile, d.ResolveTile(0, 1, 0).Tile)
	// открытая кромка без стен у соседа остаётся полом
	assert.Equal(t, terrain.CobbleTile, d.ResolveTile(0, 5, 0).Tile)
	assert.Equal(t, terrain.CobbleTile, d.ResolveTile(5, 5, 0).Tile)
}

func TestResolveTileRoomDelegation(t *testing.T) {
	room := combat.Empty()
	room.Area[2][2] = 7
	room.Area[4][3] = 0x44
	room.Monsters[combat.Coord{X: 3, Y: 4}] = 0x20
	room.Triggers[combat.Coord{X: 1, Y: 1}] = combat.Trigger{{X: 9, Y: 9}: 0x4E}

	var f Floor
	f[0][0] = DecodeBlock(0xA5)
	rooms := make([]*combat.CombatMap, 6)
	rooms[5] = room
	d := newTestDungeon(t, Cave, f, rooms...)

	assert.Equal(t, uint16(7), d.ResolveTile(2, 2, 0).Tile)

	td := d.ResolveTile(3, 4, 0)
	assert.Equal(t, uint16(0x44), td.Tile)
	require.NotNil(t, td.Monster)
	assert.Equal(t, uint8(0x20), *td.Monster)

	assert.True(t, d.ResolveTile(1, 1, 0).IsTrigger)
	assert.False(t, d.ResolveTile(1, 1, 0).IsTarget)
	assert.True(t, d.ResolveTile(9, 9, 0).IsTarget)
	assert.Nil(t, d.ResolveTile(2, 2, 0).Monster)

	// другие уровни не затронуты
	assert.Equal(t, terrain.GrassTile, d.ResolveTile(5, 5, 1).Tile)
}

func TestResolveTileDoorway(t *testing.T) {
	var f Floor
	f[0][0] = Block{Kind: Room, Payload: 0}
	d := newTestDungeon(t, Prison, f)

	// блок (1,0), западная кромка граничит с комнатой
	assert.Equal(t, terrain.DoorTile, d.ResolveTile(11, 5, 0).Tile)
	assert.Equal(t, terrain.BrickWallTile, d.ResolveTile(11, 3, 0).Tile)

	// блок (0,1), северная кромка граничит с комнатой
	assert.Equal(t, terrain.DoorTile, d.ResolveTile(5, 11, 0).Tile)
	assert.Equal(t, terrain.BrickWallTile, d.ResolveTile(7, 11, 0).Tile)

	cave := newTestDungeon(t, Cave, f)
	assert.Equal(t, terrain.GrassTile, cave.ResolveTile(11, 5, 0).Tile)
	assert.Equal(t, terrain.RocksTile, cave.ResolveTile(11, 3, 0).Tile)
}

func TestResolveTileCenterFeatures(t *testing.T) {
	cases := []struct {
		raw  byte
		want uint16
	}{
		{0x00, terrain.GrassTile},
		{0x10, terrain.UpDownLadderTile},
		{0x20, terrain.DownLadderTile},
		{0x30, terrain.UpDownLadderTile},
		{0x43, terrain.ChestTile},
		{0x70, terrain.ChestTile},
		{0x52, terrain.FountainTile},
		{0x61, terrain.TrapdoorTile},
		{0x83, terrain.ForceFieldBaseTile + 3},
		{0x86, terrain.ForceFieldBaseTile + 2},
		{0xD0, terrain.SecretDoorTile},
		{0xE0, terrain.DoorTile},
	}
	for _, c := range cases {
		var f Floor
		f[2][2] = DecodeBlock(c.raw)
		d := newTestDungeon(t, Mine, f)
		assert.Equal(t, c.want, d.ResolveTile(27, 27, 0).Tile, "байт 0x%02X", c.raw)
		// вне центра - обычный пол
		assert.Equal(t, terrain.GrassTile, d.ResolveTile(27, 25, 0).Tile, "байт 0x%02X", c.raw)
	}
}

func TestResolveTileCenterWallSpine(t *testing.T) {
	var f Floor
	f[1][2] = Block{Kind: Door}
	f[0][2] = Block{Kind: Wall}
	f[2][2] = Block{Kind: Wall}
	d := newTestDungeon(t, Mine, f)

	// блок (2,1) между стенами сверху и снизу: осевая линия - стена
	assert.Equal(t, terrain.StoneWallTile, d.ResolveTile(27, 13, 0).Tile)
	assert.Equal(t, terrain.StoneWallTile, d.ResolveTile(27, 19, 0).Tile)
	assert.Equal(t, terrain.DoorTile, d.ResolveTile(27, 16, 0).Tile)
	assert.Equal(t, terrain.GrassTile, d.ResolveTile(25, 16, 0).Tile)

	f[1][2] = Block{Kind: Field, Payload: 5}
	d = newTestDungeon(t, Mine, f)
	for y := 13; y <= 19; y++ {
		assert.Equal(t, terrain.ForceFieldBaseTile+1, d.ResolveTile(27, y, 0).Tile, "y=%d", y)
	}
	assert.Equal(t, terrain.GrassTile, d.ResolveTile(26, 16, 0).Tile)
}

func TestLevelText(t *testing.T) {
	var f Floor
	f[0][0] = Block{Kind: Wall}
	room := combat.Empty()
	room.Monsters[combat.Coord{X: 0, Y: 0}] = 1
	f[1][1] = Block{Kind: Room, Payload: 0}
	d := newTestDungeon(t, Cave, f, room)

	text := d.LevelText(0)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, LevelTiles)
	assert.Equal(t, LevelTiles, len([]rune(lines[0])))
	assert.Equal(t, ' ', []rune(lines[0])[0])
	assert.Equal(t, 'm', []rune(lines[11])[11])

	assert.Empty(t, d.LevelText(9))
}
