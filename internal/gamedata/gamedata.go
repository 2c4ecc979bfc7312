// Package gamedata загружает файлы данных игры из каталога установки
// и собирает из них подземелья и атлас тайлов.
package gamedata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/logging"
	"github.com/annel0/dungeon-atlas/internal/storage"
	"github.com/annel0/dungeon-atlas/internal/tiles"
)

// Имена файлов в каталоге данных
const (
	OverworldFile    = "BRIT.CBT"
	DungeonRoomsFile = "DUNGEON.CBT"
	DungeonGridFile  = "DUNGEON.DAT"
	TilesFile        = "TILES.16"
)

// ErrInvalidDataDir возвращается, если каталог не похож на установку игры
var ErrInvalidDataDir = errors.New("invalid data directory")

// Entry описывает подземелье из статической таблицы
type Entry struct {
	Name     string
	Kind     dungeon.Kind
	HasRooms bool
}

// Table перечисляет подземелья в порядке записей DUNGEON.DAT.
// У второго подземелья нет боевых комнат.
var Table = [dungeon.Levels]Entry{
	{Name: "Deceit", Kind: dungeon.Cave, HasRooms: true},
	{Name: "Despise", Kind: dungeon.Cave},
	{Name: "Destard", Kind: dungeon.Cave, HasRooms: true},
	{Name: "Wrong", Kind: dungeon.Prison, HasRooms: true},
	{Name: "Covetous", Kind: dungeon.Mine, HasRooms: true},
	{Name: "Shame", Kind: dungeon.Cave, HasRooms: true},
	{Name: "Hythloth", Kind: dungeon.Cave, HasRooms: true},
	{Name: "Doom", Kind: dungeon.Cave, HasRooms: true},
}

// Dataset - всё, что нужно для отрисовки
type Dataset struct {
	Dungeons []*dungeon.Dungeon
	Atlas    *tiles.Atlas
}

// ValidateDir проверяет, что в каталоге есть BRIT.CBT
func ValidateDir(dir string) error {
	info, err := os.Stat(filepath.Join(dir, OverworldFile))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDataDir, dir, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s: %s не является файлом", ErrInvalidDataDir, dir, OverworldFile)
	}
	return nil
}

// Load проверяет каталог и загружает подземелья и атлас
func Load(ctx context.Context, dir string, repo storage.AtlasRepo) (*Dataset, error) {
	if err := ValidateDir(dir); err != nil {
		return nil, err
	}

	dungeons, err := LoadDungeons(dir)
	if err != nil {
		return nil, err
	}

	atlas, err := LoadAtlas(ctx, dir, repo)
	if err != nil {
		return nil, err
	}

	return &Dataset{Dungeons: dungeons, Atlas: atlas}, nil
}

// LoadDungeons декодирует DUNGEON.DAT и DUNGEON.CBT и раздаёт комнаты
// подземельям по таблице. Подземелье без комнат получает 16 пустых.
func LoadDungeons(dir string) ([]*dungeon.Dungeon, error) {
	log := logging.GetDataLogger()

	grid, err := os.ReadFile(filepath.Join(dir, DungeonGridFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", DungeonGridFile, err)
	}
	floors, err := dungeon.DecodeDungeons(grid)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", DungeonGridFile, err)
	}
	if len(floors) != len(Table) {
		return nil, fmt.Errorf("%w: %s содержит %d подземелий, ожидалось %d",
			dungeon.ErrDecode, DungeonGridFile, len(floors), len(Table))
	}

	data, err := os.ReadFile(filepath.Join(dir, DungeonRoomsFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", DungeonRoomsFile, err)
	}
	rooms, err := combat.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", DungeonRoomsFile, err)
	}

	want := 0
	for _, e := range Table {
		if e.HasRooms {
			want += dungeon.RoomCount
		}
	}
	if len(rooms) != want {
		return nil, fmt.Errorf("%w: %s содержит %d комнат, ожидалось %d",
			combat.ErrDecode, DungeonRoomsFile, len(rooms), want)
	}
	log.Debug("Прочитано %d комнат из %s", len(rooms), DungeonRoomsFile)

	dungeons := make([]*dungeon.Dungeon, 0, len(Table))
	for i, e := range Table {
		var own []*combat.CombatMap
		if e.HasRooms {
			own, rooms = rooms[:dungeon.RoomCount], rooms[dungeon.RoomCount:]
		} else {
			own = make([]*combat.CombatMap, dungeon.RoomCount)
		}

		d, err := dungeon.New(e.Name, e.Kind, floors[i], own)
		if err != nil {
			return nil, fmt.Errorf("подземелье %s: %w", e.Name, err)
		}
		dungeons = append(dungeons, d)
	}

	log.Info("Загружено %d подземелий из %s", len(dungeons), dir)
	return dungeons, nil
}

// LoadOverworldRooms декодирует боевые карты поверхности из BRIT.CBT
func LoadOverworldRooms(dir string) ([]*combat.CombatMap, error) {
	data, err := os.ReadFile(filepath.Join(dir, OverworldFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", OverworldFile, err)
	}
	rooms, err := combat.DecodeAll(data)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", OverworldFile, err)
	}
	return rooms, nil
}

// LoadAtlas читает TILES.16 и строит атлас.
// Распакованные пиксели берутся из repo, если запись уже есть.
// Повреждённая запись удаляется, и поток распаковывается заново.
func LoadAtlas(ctx context.Context, dir string, repo storage.AtlasRepo) (*tiles.Atlas, error) {
	log := logging.GetDataLogger()
	if repo == nil {
		repo = storage.NopAtlasRepo{}
	}

	stream, err := os.ReadFile(filepath.Join(dir, TilesFile))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения %s: %w", TilesFile, err)
	}

	px, found, err := repo.Load(ctx, stream)
	if err != nil {
		log.Warn("Кэш атласа недоступен: %v", err)
	}
	if found {
		atlas, err := tiles.FromPixels(px)
		if err == nil {
			log.Debug("Атлас загружен из кэша (%s)", storage.AtlasKey(stream))
			return atlas, nil
		}

		log.Warn("Запись кэша %s повреждена: %v", storage.AtlasKey(stream), err)
		if err := repo.Delete(ctx, stream); err != nil {
			log.Warn("Не удалось удалить запись кэша: %v", err)
		}
	}

	px, err = tiles.Unpack(stream)
	if err != nil {
		log.Error("Ошибка распаковки %s: %v\n%s", TilesFile, err, logging.HexDump(stream))
		return nil, fmt.Errorf("ошибка распаковки %s: %w", TilesFile, err)
	}

	if err := repo.Store(ctx, stream, px); err != nil {
		log.Warn("Не удалось сохранить атлас в кэш: %v", err)
	}

	return tiles.FromPixels(px)
}
