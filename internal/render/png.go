package render

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// FileName возвращает имя файла уровня: <dungeon>_<level>[_unfolded].png
func FileName(dungeon string, level int, unfold bool) string {
	name := fmt.Sprintf("%s_%d", strings.ToLower(dungeon), level)
	if unfold {
		name += "_unfolded"
	}
	return name + ".png"
}

// WritePNG сохраняет изображение, создавая каталоги при необходимости
func WritePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("не удалось создать каталог для %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать файл %s: %w", path, err)
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("не удалось закодировать PNG %s: %w", path, err)
	}
	return f.Close()
}
