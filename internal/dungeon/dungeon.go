package dungeon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/terrain"
	"github.com/annel0/dungeon-atlas/internal/vec"
)

const (
	// RoomCount - число комнат у каждого подземелья
	RoomCount = 16
	// LevelTiles - сторона уровня в тайлах
	LevelTiles = FloorSize * vec.BlockSize

	center = vec.BlockSize / 2
	edge   = vec.BlockSize - 1
)

// ErrRoomCount возвращается, если подземелью передано не 16 комнат
var ErrRoomCount = errors.New("dungeon must have exactly 16 rooms")

// Dungeon объединяет уровни и комнаты одного подземелья
type Dungeon struct {
	Name   string
	Kind   Kind
	Floors [Levels]Floor
	Rooms  [RoomCount]*combat.CombatMap
}

// TileData - результат разрешения одного тайла уровня
type TileData struct {
	Tile      uint16 // Код тайла атласа, 0 - пусто
	Monster   *uint8 // Тип монстра, если он стоит на тайле
	IsTrigger bool   // Тайл является нажимной плитой
	IsTarget  bool   // Тайл меняется какой-либо плитой
}

// New создаёт подземелье. Отсутствующие комнаты заменяются пустыми.
func New(name string, kind Kind, floors [Levels]Floor, rooms []*combat.CombatMap) (*Dungeon, error) {
	if len(rooms) != RoomCount {
		return nil, fmt.Errorf("%w: %s: получено %d", ErrRoomCount, name, len(rooms))
	}

	d := &Dungeon{Name: name, Kind: kind, Floors: floors}
	for i, r := range rooms {
		if r == nil {
			r = combat.Empty()
		}
		d.Rooms[i] = r
	}
	return d, nil
}

// sides - признаки стен у четырёх соседей блока
type sides struct {
	north, east, west, south bool
}

// ResolveTile определяет тайл в абсолютных координатах уровня z.
// Правила проверяются по порядку, срабатывает первое подходящее.
func (d *Dungeon) ResolveTile(x, y, z int) TileData {
	if z < 0 || z >= Levels || x < 0 || x >= LevelTiles || y < 0 || y >= LevelTiles {
		return TileData{}
	}

	pos := vec.Vec2{X: x, Y: y}
	bp := pos.ToBlockCoords()
	local := pos.LocalInBlock()
	lx, ly := local.X, local.Y

	floor := &d.Floors[z]
	block := floor[bp.Y][bp.X]

	switch block.Kind {
	case Room:
		return d.resolveRoom(block.Payload, lx, ly)
	case Wall:
		return TileData{Tile: terrain.DarknessTile}
	}

	north := floor.At(bp.Add(vec.North))
	east := floor.At(bp.Add(vec.East))
	west := floor.At(bp.Add(vec.West))
	south := floor.At(bp.Add(vec.South))
	walls := sides{
		north: north.IsWall(),
		east:  east.IsWall(),
		west:  west.IsWall(),
		south: south.IsWall(),
	}

	dw, de, dn, ds := lx, edge-lx, ly, edge-ly
	vertMin := min(dn, ds)
	horzMin := min(de, dw)

	wallTile := d.Kind.WallTile()

	// Кромка, прилегающая к стене, темнеет, следующий ряд становится стеной
	if touches(walls, dn, de, dw, ds, 0) {
		return TileData{Tile: terrain.DarknessTile}
	}
	if touches(walls, dn, de, dw, ds, 1) {
		return TileData{Tile: wallTile}
	}

	centerWall := isCenterWall(walls, lx, ly)

	// Граница с комнатой закрыта стеной везде, кроме середины
	if tile, ok := d.doorway(north, east, west, south, dn, de, dw, ds); ok {
		return TileData{Tile: tile}
	}

	switch max(vertMin, horzMin) {
	case 0:
		return TileData{Tile: terrain.DarknessTile}
	case 1:
		return TileData{Tile: wallTile}
	}

	tile := d.Kind.FloorTile()
	if (block.Kind == Door || block.Kind == SecretDoor) && centerWall {
		tile = wallTile
	}

	if lx == center && ly == center {
		if feature, ok := centerFeature(block.Kind); ok {
			tile = feature
		}
	}

	if block.Kind == Field && centerWall {
		tile = terrain.ForceFieldBaseTile + uint16(block.Payload%4)
	}

	return TileData{Tile: tile}
}

func (d *Dungeon) resolveRoom(n uint8, lx, ly int) TileData {
	room := d.Rooms[n]
	c := combat.Coord{X: uint8(lx), Y: uint8(ly)}

	td := TileData{
		Tile:      uint16(room.Area[ly][lx]),
		IsTrigger: room.IsTrigger(c),
		IsTarget:  room.IsTarget(c),
	}
	if kind, ok := room.Monsters[c]; ok {
		td.Monster = &kind
	}
	return td
}

// touches сообщает, лежит ли точка на расстоянии dist от стороны со стеной
func touches(w sides, dn, de, dw, ds, dist int) bool {
	return (w.north && dn == dist) ||
		(w.east && de == dist) ||
		(w.west && dw == dist) ||
		(w.south && ds == dist)
}

// isCenterWall определяет «хребет» блока: центр и осевая линия,
// если блок зажат стенами с двух противоположных сторон
func isCenterWall(w sides, lx, ly int) bool {
	if lx == center && ly == center {
		return true
	}
	if lx == center && ly >= 2 && ly <= edge-2 &&
		w.north && w.south && !(w.east && w.west) {
		return true
	}
	if ly == center && lx >= 2 && lx <= edge-2 &&
		w.east && w.west && !(w.north && w.south) {
		return true
	}
	return false
}

// doorway обрабатывает кромку, граничащую с комнатой. Проход рисуется
// строго посередине стороны, даже если дверь комнаты смещена.
func (d *Dungeon) doorway(north, east, west, south Block, dn, de, dw, ds int) (uint16, bool) {
	type side struct {
		neighbour Block
		dist, mid int
	}
	for _, s := range [4]side{
		{north, dn, de},
		{east, de, dn},
		{west, dw, dn},
		{south, ds, de},
	} {
		if s.dist != 0 || !s.neighbour.IsRoom() {
			continue
		}
		if s.mid != center {
			return d.Kind.WallTile(), true
		}
		return d.Kind.DoorwayTile(), true
	}
	return 0, false
}

func centerFeature(k BlockKind) (uint16, bool) {
	switch k {
	case UpLadder:
		return terrain.UpLadderTile, true
	case DownLadder:
		return terrain.DownLadderTile, true
	case UpDownLadder:
		return terrain.UpDownLadderTile, true
	case Chest, OpenChest:
		return terrain.ChestTile, true
	case Fountain:
		return terrain.FountainTile, true
	case Trap:
		return terrain.TrapdoorTile, true
	case Door:
		return terrain.DoorTile, true
	case SecretDoor:
		return terrain.SecretDoorTile, true
	}
	return 0, false
}

// LevelText рисует уровень z символами ландшафта, по символу на тайл.
// Монстры обозначаются буквой m.
func (d *Dungeon) LevelText(z int) string {
	if z < 0 || z >= Levels {
		return ""
	}

	var sb strings.Builder
	sb.Grow(LevelTiles * (LevelTiles + 1))
	for y := 0; y < LevelTiles; y++ {
		for x := 0; x < LevelTiles; x++ {
			td := d.ResolveTile(x, y, z)
			if td.Monster != nil {
				sb.WriteRune(terrain.Monster.Rune())
				continue
			}
			sb.WriteRune(terrain.Lookup(td.Tile).Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
