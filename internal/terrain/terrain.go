package terrain

import "strconv"

// Terrain - символический тип тайла. Коды 0..255 - ландшафт и предметы,
// коды от 256 - монстры и объекты из второй половины атласа.
type Terrain uint16

const (
	Unknown Terrain = iota
	DeepWater
	Water
	Shoals
	Swamp
	Grass
	Brush
	Desert
	HeavyBrush
	Trees
	TropicalForest
	Foothills
	Mountains
	HighPeaks

	SmallHut
	CodexShrine
	Keep
	Village
	Towne
	Castle
	Cave
	Mine
	Dungeon
	Shrine
	RuinedShrine
	Lighthouse
	Oasis
	Bridge

	Road
	Roof
	CrystalSphere
	LighthouseLight
	HollowStump
	PlowedPatch
	Crops
	Tree
	Cactus
	Gargoyle

	WoodenPlanks
	Codex
	Mast
	Rail
	Cobble
	Pillar
	Pier
	ArrowSlit
	Window
	Rocks
	StoneWall
	SecretDoor
	BrickWall

	Crenellations
	Anvil
	Spyglass
	WindowShelf
	PottedPlant
	Bookshelf
	Guardian
	River
	StrangeWall

	Pendulum
	Stocks
	Manacles
	Grate
	Archway
	Cannonballs
	Grave
	Gravestone
	Rack
	Trapdoor
	Harpsichord
	Guillotine
	Lava

	Chair
	Table
	MagicDoor
	MagicWindowDoor
	Portcullis
	TableWithFood
	Mirror
	MirrorReflection
	BrokenMirror

	Sign
	Well
	HitchingPost
	Logs
	Marker
	Desk
	Barrel
	Cask
	VanityTable
	Pitcher
	Carpet
	Bed
	ChestOfDrawers
	EndTable
	Footlocker

	Torch
	Brazier
	Spit
	Cannon
	Door
	LockedDoor
	WindowDoor
	LockedWindowDoor
	Fireplace
	StreetLamp
	Candelabrum
	Stove

	Stairs
	Ladder
	Fence
	Waterfall
	Fountain
	MoonGate
	Flame
	CollapsedDungeon
	Flagpole
	Hourglass
	Standard

	ProvisionerSign
	GovernmentSign
	ArmourySign
	HealerSign
	StableSign
	GuildSign
	InnSign
	ApothecarySign
	ShipwrightSign
	GrandfatherClock
	Bellows
	Wall
	Darkness

	Chest
	Monster
)

// Идентификаторы тайлов атласа, которые использует отрисовка подземелий
const (
	GrassTile          uint16 = 0x05
	WoodenPlanksTile   uint16 = 0x40
	CobbleTile         uint16 = 0x44
	RocksTile          uint16 = 0x4C
	StoneWallTile      uint16 = 0x4D
	SecretDoorTile     uint16 = 0x4E
	BrickWallTile      uint16 = 0x4F
	TrapdoorTile       uint16 = 0x8C
	DoorTile           uint16 = 0xB8
	UpLadderTile       uint16 = 0xC8
	DownLadderTile     uint16 = 0xC9
	UpDownLadderTile   uint16 = 0xCC // синтезированный, в исходных данных его нет
	FountainTile       uint16 = 0xD8
	WallTile           uint16 = 0xFE
	DarknessTile       uint16 = 0xFF
	MonsterTileBase    uint16 = 0x100
	ChestTile          uint16 = 0x101
	ForceFieldBaseTile uint16 = 0x1E8
)

// table покрывает коды 0..255; индекс - код тайла
var table = [256]Terrain{
	// 0
	Unknown, DeepWater, Water, Shoals, Swamp, Grass, Brush, Desert,
	HeavyBrush, Trees, TropicalForest, Foothills, Mountains, HighPeaks,
	Foothills, Foothills,
	// 16
	SmallHut, CodexShrine, Keep, Village, Towne, Castle, Cave, Mine, Dungeon,
	Shrine, RuinedShrine, Lighthouse, Oasis, Bridge, Desert, Desert,
	// 32
	Road, Road, Road, Road, Road, Road, Road, Roof, Roof, CrystalSphere,
	LighthouseLight, HollowStump, PlowedPatch, Crops, Tree, Cactus,
	// 48
	Grass, Grass, Grass, Grass, Shoals, Shoals, Shoals, Shoals, Gargoyle,
	Castle, Castle, Castle, Castle, Castle, Castle, Castle,
	// 64
	WoodenPlanks, Codex, Mast, Rail, Cobble, Cobble, Pillar, Pier,
	WoodenPlanks, WoodenPlanks, ArrowSlit, Window, Rocks, StoneWall,
	SecretDoor, BrickWall,
	// 80
	Crenellations, Crenellations, Crenellations, Crenellations, Crenellations,
	Crenellations, Crenellations, Crenellations, Anvil, Spyglass, WindowShelf,
	PottedPlant, Bookshelf, Bookshelf, Guardian, Guardian,
	// 96
	River, River, River, River, River, River, River, River, River, River,
	Bridge, Bridge, River, River, River, River,
	// 112
	StrangeWall, StrangeWall, StrangeWall, StrangeWall, StrangeWall,
	StrangeWall, StrangeWall, StrangeWall, StrangeWall, StrangeWall,
	StrangeWall, StrangeWall, StrangeWall, StrangeWall, StrangeWall,
	StrangeWall,
	// 128
	Pendulum, Pendulum, Pendulum, Pendulum, Stocks, Manacles, Grate, Archway,
	Cannonballs, Grave, Gravestone, Rack, Trapdoor, Harpsichord, Guillotine,
	Lava,
	// 144
	Chair, Chair, Chair, Chair, Table, Table, Table, MagicDoor,
	MagicWindowDoor, Portcullis, TableWithFood, TableWithFood, TableWithFood,
	Mirror, MirrorReflection, BrokenMirror,
	// 160
	Sign, Well, HitchingPost, Logs, Marker, Desk, Barrel, Cask, VanityTable,
	Pitcher, Carpet, Bed, Bed, ChestOfDrawers, EndTable, Footlocker,
	// 176
	Torch, Torch, Brazier, Spit, Cannon, Cannon, Cannon, Cannon, Door,
	LockedDoor, WindowDoor, LockedWindowDoor, Fireplace, StreetLamp,
	Candelabrum, Stove,
	// 192
	Unknown, Unknown, Unknown, Unknown, Stairs, Stairs, Stairs, Stairs,
	Ladder, Ladder, Fence, Fence, Unknown, Unknown, Unknown, Unknown,
	// 208
	Wall, Wall, Wall, Wall, Waterfall, Waterfall, Waterfall, Waterfall,
	Fountain, Fountain, Fountain, Fountain, MoonGate, Desert, Flame,
	CollapsedDungeon,
	// 224
	Flagpole, Flagpole, Flagpole, Flagpole, Wall, Wall, Wall, Wall, Hourglass,
	Hourglass, Hourglass, Hourglass, Standard, Standard, Standard, Standard,
	// 240
	ProvisionerSign, GovernmentSign, ArmourySign, HealerSign, StableSign,
	GuildSign, InnSign, ApothecarySign, Unknown, ShipwrightSign,
	GrandfatherClock, GrandfatherClock, Bellows, Bellows, Wall, Darkness,
}

// Lookup возвращает символический тип для кода тайла
func Lookup(code uint16) Terrain {
	switch {
	case code < 256:
		return table[code]
	case code == ChestTile:
		return Chest
	case code < 512:
		return Monster
	default:
		return Unknown
	}
}

// Rune возвращает символ для текстового дампа
func (t Terrain) Rune() rune {
	switch t {
	case DeepWater:
		return '≋'
	case Water:
		return '≈'
	case Shoals, River:
		return '~'
	case Swamp:
		return ','
	case Grass, Road, Desert, Cobble, WoodenPlanks:
		return '.'
	case Brush, HeavyBrush, Trees, TropicalForest:
		return '%'
	case Foothills, Mountains, HighPeaks:
		return '^'
	case Lava:
		return '&'
	case Rocks, StoneWall:
		return '*'
	case SecretDoor, BrickWall, StrangeWall, Wall:
		return '#'
	case Mast:
		return '0'
	case Ladder, Stairs:
		return '<'
	case Window, ArrowSlit:
		return '+'
	case Door, LockedDoor, LockedWindowDoor, WindowDoor:
		return '|'
	case Trapdoor:
		return '^'
	case Fountain:
		return '{'
	case Chest:
		return '$'
	case Monster:
		return 'm'
	case Darkness:
		return ' '
	default:
		return '?'
	}
}

var names = map[Terrain]string{
	Unknown: "Unknown", DeepWater: "DeepWater", Water: "Water", Shoals: "Shoals",
	Swamp: "Swamp", Grass: "Grass", Desert: "Desert", Road: "Road",
	Cobble: "Cobble", WoodenPlanks: "WoodenPlanks", Rocks: "Rocks",
	StoneWall: "StoneWall", SecretDoor: "SecretDoor", BrickWall: "BrickWall",
	Trapdoor: "Trapdoor", Door: "Door", Ladder: "Ladder", Fountain: "Fountain",
	Wall: "Wall", Darkness: "Darkness", Chest: "Chest", Monster: "Monster",
	River: "River", Lava: "Lava", Stairs: "Stairs", StrangeWall: "StrangeWall",
}

// String возвращает имя для наиболее употребительных типов
func (t Terrain) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "Terrain(" + strconv.Itoa(int(t)) + ")"
}
