package tiles

import (
	"bytes"
	"compress/lzw"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

const (
	// Count - число тайлов в атласе
	Count = 512
	// Size - сторона тайла в пикселях
	Size = 16
	// PixelsPerTile - пикселей в одном тайле
	PixelsPerTile = Size * Size
	// BytesPerTile - упакованных байт на тайл (два пикселя в байте)
	BytesPerTile = PixelsPerTile / 2

	headerSize  = 4
	packedSize  = Count * BytesPerTile
	pixelsTotal = Count * PixelsPerTile

	recolorLimit = 128
	upLadder     = 200
	downLadder   = 201
	// UpDownLadder - синтезированный тайл, которого нет в исходных данных
	UpDownLadder = 204

	sheetColumns = 32
)

// ErrCorruptStream возвращается, если поток тайлов не удаётся распаковать
var ErrCorruptStream = errors.New("corrupt tile stream")

// recolorExceptions - тайлы, зелёный цвет которых настоящий
// (болото, пень, дерево, растение в горшке)
var recolorExceptions = map[int]struct{}{
	4:  {},
	43: {},
	46: {},
	91: {},
}

// Atlas - таблица [tile][row][col] индексов палитры. После построения
// только читается и может использоваться из нескольких горутин.
type Atlas struct {
	px []uint8
}

// Decompress распаковывает LZW-поток (младший бит первым, ширина 8)
// и возвращает ровно n байт. Данные после n байт игнорируются.
func Decompress(r io.Reader, n int) ([]byte, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	out := make([]byte, n)
	if _, err := io.ReadFull(lr, out); err != nil {
		return nil, fmt.Errorf("%w: распаковка LZW: %v", ErrCorruptStream, err)
	}
	return out, nil
}

// Unpack проверяет заголовок, распаковывает поток и раскладывает ниббли
// по пикселям (старший ниббл первым). Постобработка не применяется.
func Unpack(stream []byte) ([]byte, error) {
	if len(stream) < headerSize {
		return nil, fmt.Errorf("%w: нет заголовка длины", ErrCorruptStream)
	}

	declared := binary.LittleEndian.Uint32(stream[:headerSize])
	if declared < packedSize {
		return nil, fmt.Errorf("%w: заявлено %d байт, нужно не меньше %d", ErrCorruptStream, declared, packedSize)
	}

	packed, err := Decompress(bytes.NewReader(stream[headerSize:]), packedSize)
	if err != nil {
		return nil, err
	}

	px := make([]byte, 0, pixelsTotal)
	for _, b := range packed {
		px = append(px, b>>4, b&0x0F)
	}
	return px, nil
}

// Parse строит атлас из содержимого файла тайлов
func Parse(stream []byte) (*Atlas, error) {
	px, err := Unpack(stream)
	if err != nil {
		return nil, err
	}
	return FromPixels(px)
}

// FromPixels строит атлас из распакованных пикселей (по индексу в байте)
// и применяет перекраску и синтез совмещённой лестницы
func FromPixels(px []byte) (*Atlas, error) {
	if len(px) != pixelsTotal {
		return nil, fmt.Errorf("%w: ожидалось %d пикселей, получено %d", ErrCorruptStream, pixelsTotal, len(px))
	}

	a := &Atlas{px: make([]uint8, pixelsTotal)}
	copy(a.px, px)
	a.recolor()
	a.synthesizeLadder()
	return a, nil
}

// recolor перекрашивает зелёный в бордовый в наземных тайлах 0..127
func (a *Atlas) recolor() {
	for t := 0; t < recolorLimit; t++ {
		if _, skip := recolorExceptions[t]; skip {
			continue
		}
		tile := a.tile(t)
		for i, c := range tile {
			if c == Green {
				tile[i] = Maroon
			}
		}
	}
}

// synthesizeLadder собирает тайл 204: верхняя половина от лестницы вверх,
// нижняя от лестницы вниз
func (a *Atlas) synthesizeLadder() {
	dst := a.tile(UpDownLadder)
	half := PixelsPerTile / 2
	copy(dst[:half], a.tile(upLadder)[:half])
	copy(dst[half:], a.tile(downLadder)[half:])
}

func (a *Atlas) tile(t int) []uint8 {
	off := t * PixelsPerTile
	return a.px[off : off+PixelsPerTile : off+PixelsPerTile]
}

// Index возвращает индекс палитры пикселя; вне атласа - 0
func (a *Atlas) Index(tile, row, col int) uint8 {
	if tile < 0 || tile >= Count || row < 0 || row >= Size || col < 0 || col >= Size {
		return 0
	}
	return a.px[tile*PixelsPerTile+row*Size+col]
}

// RGBA возвращает цвет пикселя тайла
func (a *Atlas) RGBA(tile, row, col int) color.RGBA {
	return Color(a.Index(tile, row, col))
}

// Pixels возвращает копию таблицы пикселей
func (a *Atlas) Pixels() []byte {
	out := make([]byte, len(a.px))
	copy(out, a.px)
	return out
}

// Sheet рисует все тайлы листом 32x16 тайлов
func (a *Atlas) Sheet() *image.RGBA {
	rows := Count / sheetColumns
	img := image.NewRGBA(image.Rect(0, 0, sheetColumns*Size, rows*Size))
	for t := 0; t < Count; t++ {
		ox := (t % sheetColumns) * Size
		oy := (t / sheetColumns) * Size
		for row := 0; row < Size; row++ {
			for col := 0; col < Size; col++ {
				img.SetRGBA(ox+col, oy+row, Color(a.Index(t, row, col)))
			}
		}
	}
	return img
}

// Dump пишет текстовый дамп: по строке на ряд пикселей, шестнадцатеричная
// цифра на пиксель, пробел для индекса 0
func (a *Atlas) Dump(w io.Writer) error {
	const digits = "0123456789abcdef"

	line := make([]byte, Size+1)
	line[Size] = '\n'
	for r := 0; r < Count*Size; r++ {
		for c := 0; c < Size; c++ {
			v := a.px[r*Size+c]
			if v == 0 {
				line[c] = ' '
			} else {
				line[c] = digits[v&0x0F]
			}
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("не удалось записать дамп тайлов: %w", err)
		}
	}
	return nil
}
