package dungeon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/annel0/dungeon-atlas/internal/vec"
)

const (
	// FloorSize - сторона сетки уровня в блоках
	FloorSize = 8
	// Levels - число уровней в подземелье
	Levels = 8
	// FloorBytes - размер одного уровня в файле
	FloorBytes = FloorSize * FloorSize
	// GridBytes - размер всех уровней одного подземелья
	GridBytes = Levels * FloorBytes
)

// ErrDecode возвращается при несовпадении длины сетки уровней
var ErrDecode = errors.New("block grid decode error")

// Floor - сетка блоков одного уровня, Floor[y][x]
type Floor [FloorSize][FloorSize]Block

// At возвращает блок с тороидальным заворачиванием координат
func (f *Floor) At(v vec.Vec2) Block {
	w := v.Wrap(FloorSize)
	return f[w.Y][w.X]
}

// DecodeFloors декодирует восемь подряд идущих сеток 8x8
func DecodeFloors(b []byte) ([Levels]Floor, error) {
	var floors [Levels]Floor
	if len(b) != GridBytes {
		return floors, fmt.Errorf("%w: ожидалось %d байт, получено %d", ErrDecode, GridBytes, len(b))
	}

	for i, raw := range b {
		z := i / FloorBytes
		y := (i % FloorBytes) / FloorSize
		x := i % FloorSize
		floors[z][y][x] = DecodeBlock(raw)
	}
	return floors, nil
}

// DecodeDungeons декодирует файл со всеми подземельями подряд
func DecodeDungeons(b []byte) ([][Levels]Floor, error) {
	if len(b) == 0 || len(b)%GridBytes != 0 {
		return nil, fmt.Errorf("%w: длина %d не кратна %d", ErrDecode, len(b), GridBytes)
	}

	out := make([][Levels]Floor, 0, len(b)/GridBytes)
	for off := 0; off < len(b); off += GridBytes {
		floors, err := DecodeFloors(b[off : off+GridBytes])
		if err != nil {
			return nil, fmt.Errorf("подземелье %d: %w", off/GridBytes, err)
		}
		out = append(out, floors)
	}
	return out, nil
}

// String рисует уровень построчно
func (f *Floor) String() string {
	var sb strings.Builder
	for y := 0; y < FloorSize; y++ {
		for x := 0; x < FloorSize; x++ {
			sb.WriteRune(f[y][x].Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
