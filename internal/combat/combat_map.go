package combat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/dungeon-atlas/internal/terrain"
)

// Size - сторона карты боя в тайлах
const Size = 11

// RecordSize - размер одной упакованной записи карты боя (11 строк по 32 байта)
const RecordSize = 352

// ErrDecode возвращается, если длина входа не совпадает с размером записи
var ErrDecode = errors.New("combat map decode error")

// Direction - сторона, с которой отряд входит в комнату
type Direction int

const (
	East Direction = iota
	West
	South
	North
)

var directionNames = [...]string{"east", "west", "south", "north"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "unknown"
	}
	return directionNames[d]
}

// Coord - координата внутри карты 11x11
type Coord struct {
	X, Y uint8
}

// Trigger описывает одну нажимную плиту: куда наступить и что поменять
type Trigger map[Coord]uint8

// CombatMap - логическая модель одной комнаты
type CombatMap struct {
	Area        [Size][Size]uint8 // Area[y][x] - коды тайлов
	PlayerEntry [4][6]Coord       // кандидаты точек входа, порядок значим
	Monsters    map[Coord]uint8   // координата -> тип монстра
	Triggers    map[Coord]Trigger // координата плиты -> цель -> новый тайл
}

// rawRecord повторяет нативную раскладку записи. Строки карты чередуются
// со вспомогательными полями, паддинг игнорируется.
type rawRecord struct {
	Row0     [Size]uint8
	NewTiles [8]uint8
	_        [13]uint8

	Row1        [Size]uint8
	PlayerXEast [6]uint8
	PlayerYEast [6]uint8
	_           [9]uint8

	Row2        [Size]uint8
	PlayerXWest [6]uint8
	PlayerYWest [6]uint8
	_           [9]uint8

	Row3         [Size]uint8
	PlayerXSouth [6]uint8
	PlayerYSouth [6]uint8
	_            [9]uint8

	Row4         [Size]uint8
	PlayerXNorth [6]uint8
	PlayerYNorth [6]uint8
	_            [9]uint8

	Row5     [Size]uint8
	Monsters [16]uint8
	_        [5]uint8

	Row6      [Size]uint8
	MonstersX [16]uint8
	_         [5]uint8

	Row7      [Size]uint8
	MonstersY [16]uint8
	_         [5]uint8

	Row8     [Size]uint8
	TriggerX [8]uint8
	TriggerY [8]uint8
	_        [5]uint8

	Row9     [Size]uint8
	Change0X [8]uint8
	Change0Y [8]uint8
	_        [5]uint8

	Row10    [Size]uint8
	Change1X [8]uint8
	Change1Y [8]uint8
	_        [5]uint8
}

// Empty возвращает пустую комнату (для подземелья без комнат)
func Empty() *CombatMap {
	return &CombatMap{
		Monsters: make(map[Coord]uint8),
		Triggers: make(map[Coord]Trigger),
	}
}

// Decode разбирает ровно одну запись длиной RecordSize
func Decode(b []byte) (*CombatMap, error) {
	if len(b) != RecordSize {
		return nil, fmt.Errorf("%w: ожидалось %d байт, получено %d", ErrDecode, RecordSize, len(b))
	}

	var raw rawRecord
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return fromRaw(&raw), nil
}

// DecodeAll разбирает поток подряд идущих записей
func DecodeAll(b []byte) ([]*CombatMap, error) {
	if len(b)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: длина потока %d не кратна %d", ErrDecode, len(b), RecordSize)
	}

	maps := make([]*CombatMap, 0, len(b)/RecordSize)
	for off := 0; off < len(b); off += RecordSize {
		m, err := Decode(b[off : off+RecordSize])
		if err != nil {
			return nil, fmt.Errorf("запись %d: %w", off/RecordSize, err)
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func fromRaw(raw *rawRecord) *CombatMap {
	m := Empty()

	rows := [Size]*[Size]uint8{
		&raw.Row0, &raw.Row1, &raw.Row2, &raw.Row3, &raw.Row4, &raw.Row5,
		&raw.Row6, &raw.Row7, &raw.Row8, &raw.Row9, &raw.Row10,
	}
	for y, row := range rows {
		m.Area[y] = *row
	}

	m.PlayerEntry[East] = zip6(raw.PlayerXEast, raw.PlayerYEast)
	m.PlayerEntry[West] = zip6(raw.PlayerXWest, raw.PlayerYWest)
	m.PlayerEntry[South] = zip6(raw.PlayerXSouth, raw.PlayerYSouth)
	m.PlayerEntry[North] = zip6(raw.PlayerXNorth, raw.PlayerYNorth)

	// Пустые слоты (тип 0) не вставляются вовсе
	for i, kind := range raw.Monsters {
		if kind == 0 {
			continue
		}
		m.Monsters[Coord{X: raw.MonstersX[i], Y: raw.MonstersY[i]}] = kind
	}

	for i, tile := range raw.NewTiles {
		if tile == 0 {
			continue
		}
		pos := Coord{X: raw.TriggerX[i], Y: raw.TriggerY[i]}
		t1 := Coord{X: raw.Change0X[i], Y: raw.Change0Y[i]}
		t2 := Coord{X: raw.Change1X[i], Y: raw.Change1Y[i]}

		// совпадающие цели схлопываются ключом мапы
		m.Triggers[pos] = Trigger{t1: tile, t2: tile}
	}

	return m
}

func zip6(xs, ys [6]uint8) [6]Coord {
	var out [6]Coord
	for i := range xs {
		out[i] = Coord{X: xs[i], Y: ys[i]}
	}
	return out
}

// MonsterTile возвращает тайл атласа для типа монстра
func MonsterTile(kind uint8) uint16 {
	return terrain.MonsterTileBase + uint16(kind)
}

// IsTrigger сообщает, является ли координата нажимной плитой
func (m *CombatMap) IsTrigger(c Coord) bool {
	_, ok := m.Triggers[c]
	return ok
}

// IsTarget сообщает, меняет ли какая-либо плита тайл в этой координате
func (m *CombatMap) IsTarget(c Coord) bool {
	for _, targets := range m.Triggers {
		if _, ok := targets[c]; ok {
			return true
		}
	}
	return false
}

// String рисует комнату символами ландшафта
func (m *CombatMap) String() string {
	var sb strings.Builder
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			sb.WriteRune(terrain.Lookup(uint16(m.Area[y][x])).Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
