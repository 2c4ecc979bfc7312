package dungeon

import "strconv"

// BlockKind - вариант блока уровня (один блок = клетка 11x11 тайлов)
type BlockKind uint8

const (
	Corridor BlockKind = iota
	UpLadder
	DownLadder
	UpDownLadder
	Chest
	Fountain
	Trap
	OpenChest
	Field
	Wall
	SecretDoor
	Door
	Room
	Unknown
)

// Block представляет собой один блок сетки уровня
type Block struct {
	Kind    BlockKind // Вариант блока
	Payload uint8     // Младший ниббл: сила сундука/поля, тип ловушки, номер комнаты
}

// hasPayload сообщает, хранит ли вариант младший ниббл
func (k BlockKind) hasPayload() bool {
	switch k {
	case Chest, Fountain, Trap, Field, Room:
		return true
	}
	return false
}

// nibbles - таблица старшего ниббла. Ниббл 1 декодируется в совмещённую
// лестницу, отдельный UpLadder из данных не получается.
var nibbles = [16]BlockKind{
	0:  Corridor,
	1:  UpDownLadder,
	2:  DownLadder,
	3:  UpDownLadder,
	4:  Chest,
	5:  Fountain,
	6:  Trap,
	7:  OpenChest,
	8:  Field,
	9:  Unknown,
	10: Room,
	11: Wall,
	12: Wall,
	13: SecretDoor,
	14: Door,
	15: Room,
}

// DecodeBlock декодирует один байт сетки уровня
func DecodeBlock(b byte) Block {
	kind := nibbles[b>>4]
	if !kind.hasPayload() {
		return Block{Kind: kind}
	}
	return Block{Kind: kind, Payload: b & 0x0F}
}

// IsWall сообщает, является ли блок сплошной стеной
func (b Block) IsWall() bool {
	return b.Kind == Wall
}

// IsRoom сообщает, является ли блок комнатой
func (b Block) IsRoom() bool {
	return b.Kind == Room
}

// Rune возвращает символ блока для текстового дампа
func (b Block) Rune() rune {
	switch b.Kind {
	case Corridor:
		return '.'
	case UpLadder:
		return '<'
	case DownLadder:
		return '>'
	case UpDownLadder:
		return '↔'
	case Chest, OpenChest:
		return '$'
	case Fountain:
		return '{'
	case Trap:
		return '^'
	case Field:
		return '*'
	case Wall:
		return '#'
	case SecretDoor:
		return '+'
	case Door:
		return '|'
	case Room:
		return rune(strconv.FormatInt(int64(b.Payload), 16)[0])
	default:
		return '?'
	}
}

var kindNames = [...]string{
	Corridor:     "Corridor",
	UpLadder:     "UpLadder",
	DownLadder:   "DownLadder",
	UpDownLadder: "UpDownLadder",
	Chest:        "Chest",
	Fountain:     "Fountain",
	Trap:         "Trap",
	OpenChest:    "OpenChest",
	Field:        "Field",
	Wall:         "Wall",
	SecretDoor:   "SecretDoor",
	Door:         "Door",
	Room:         "Room",
	Unknown:      "Unknown",
}

func (k BlockKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "BlockKind(" + strconv.Itoa(int(k)) + ")"
}

// String возвращает вариант вместе с нагрузкой, например Room(5)
func (b Block) String() string {
	if b.Kind.hasPayload() {
		return b.Kind.String() + "(" + strconv.Itoa(int(b.Payload)) + ")"
	}
	return b.Kind.String()
}
