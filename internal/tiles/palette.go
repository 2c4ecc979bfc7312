package tiles

import "image/color"

// Индексы палитры, на которые опирается постобработка и подсветка
const (
	Black  uint8 = 0
	Green  uint8 = 2
	Maroon uint8 = 4
)

// Palette - фиксированная 16-цветная палитра EGA
var Palette = [16]color.RGBA{
	{0, 0, 0, 255},       // 0: Black
	{0, 0, 170, 255},     // 1: Blue
	{0, 170, 0, 255},     // 2: Green
	{0, 170, 170, 255},   // 3: Cyan
	{170, 0, 0, 255},     // 4: Maroon
	{170, 0, 170, 255},   // 5: Magenta
	{170, 85, 0, 255},    // 6: Brown
	{170, 170, 170, 255}, // 7: Light Gray
	{85, 85, 85, 255},    // 8: Dark Gray
	{85, 85, 255, 255},   // 9: Light Blue
	{85, 255, 85, 255},   // 10: Light Green
	{85, 255, 255, 255},  // 11: Light Cyan
	{255, 85, 85, 255},   // 12: Light Red
	{255, 85, 255, 255},  // 13: Light Magenta
	{255, 255, 85, 255},  // 14: Yellow
	{255, 255, 255, 255}, // 15: White
}

// Color возвращает цвет индекса палитры, старшие биты отбрасываются
func Color(index uint8) color.RGBA {
	return Palette[index&0x0F]
}
