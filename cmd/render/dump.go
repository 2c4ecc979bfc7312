package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/render"
	"github.com/annel0/dungeon-atlas/internal/tiles"
)

// writeText создаёт файл и передаёт буферизованный writer в fill
func writeText(path string, fill func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать файл %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}
	return f.Close()
}

// dumpDungeon пишет <name>.txt со всеми уровнями и <name>_rooms.txt с комнатами
func dumpDungeon(dir string, d *dungeon.Dungeon, levels []int) error {
	name := strings.ToLower(d.Name)

	err := writeText(filepath.Join(dir, name+".txt"), func(w *bufio.Writer) error {
		for _, z := range levels {
			fmt.Fprintf(w, "== %s, уровень %d (%s) ==\n", d.Name, z, d.Kind)
			w.WriteString(d.Floors[z].String())
			w.WriteByte('\n')
			w.WriteString(d.LevelText(z))
			w.WriteByte('\n')
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeText(filepath.Join(dir, name+"_rooms.txt"), func(w *bufio.Writer) error {
		for i, room := range d.Rooms {
			fmt.Fprintf(w, "== %s, комната %d ==\n", d.Name, i)
			dumpRoom(w, room)
		}
		return nil
	})
}

// dumpRooms пишет комнаты поверхности
func dumpRooms(path string, rooms []*combat.CombatMap) error {
	return writeText(path, func(w *bufio.Writer) error {
		for i, room := range rooms {
			fmt.Fprintf(w, "== комната %d ==\n", i)
			dumpRoom(w, room)
		}
		return nil
	})
}

// sortedCoords возвращает ключи мапы по строкам, затем по столбцам
func sortedCoords[V any](m map[combat.Coord]V) []combat.Coord {
	keys := make([]combat.Coord, 0, len(m))
	for c := range m {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Y != keys[j].Y {
			return keys[i].Y < keys[j].Y
		}
		return keys[i].X < keys[j].X
	})
	return keys
}

func dumpRoom(w *bufio.Writer, room *combat.CombatMap) {
	w.WriteString(room.String())
	for _, pos := range sortedCoords(room.Monsters) {
		fmt.Fprintf(w, "монстр %d в (%d,%d)\n", room.Monsters[pos], pos.X, pos.Y)
	}
	for _, pos := range sortedCoords(room.Triggers) {
		targets := room.Triggers[pos]
		for _, t := range sortedCoords(targets) {
			fmt.Fprintf(w, "плита (%d,%d) -> (%d,%d) = %d\n", pos.X, pos.Y, t.X, t.Y, targets[t])
		}
	}
	w.WriteByte('\n')
}

// dumpAtlas пишет текстовый дамп тайлов и лист тайлов в PNG
func dumpAtlas(dir string, atlas *tiles.Atlas) error {
	err := writeText(filepath.Join(dir, "tiles.txt"), func(w *bufio.Writer) error {
		return atlas.Dump(w)
	})
	if err != nil {
		return err
	}
	return render.WritePNG(filepath.Join(dir, "tiles.png"), atlas.Sheet())
}
