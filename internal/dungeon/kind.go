package dungeon

import (
	"fmt"
	"strings"

	"github.com/annel0/dungeon-atlas/internal/terrain"
)

// Kind определяет набор тайлов стен, пола и проходов подземелья
type Kind uint8

const (
	Cave Kind = iota
	Mine
	Prison
)

type kindTiles struct {
	wall, floor, doorway uint16
}

var kindTable = map[Kind]kindTiles{
	Cave:   {wall: terrain.RocksTile, floor: terrain.GrassTile, doorway: terrain.GrassTile},
	Mine:   {wall: terrain.StoneWallTile, floor: terrain.GrassTile, doorway: terrain.DoorTile},
	Prison: {wall: terrain.BrickWallTile, floor: terrain.CobbleTile, doorway: terrain.DoorTile},
}

// WallTile возвращает тайл стены
func (k Kind) WallTile() uint16 { return kindTable[k].wall }

// FloorTile возвращает тайл пола
func (k Kind) FloorTile() uint16 { return kindTable[k].floor }

// DoorwayTile возвращает тайл прохода в комнату
func (k Kind) DoorwayTile() uint16 { return kindTable[k].doorway }

func (k Kind) String() string {
	switch k {
	case Cave:
		return "cave"
	case Mine:
		return "mine"
	case Prison:
		return "prison"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind разбирает имя вида подземелья без учёта регистра
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cave":
		return Cave, nil
	case "mine":
		return Mine, nil
	case "prison":
		return Prison, nil
	}
	return 0, fmt.Errorf("неизвестный вид подземелья: %q", s)
}

// MarshalText позволяет использовать Kind в JSON и YAML
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText разбирает вид из текста
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
