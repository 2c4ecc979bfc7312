package api

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/dungeon-atlas/internal/cache"
	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/render"
)

// CacheHeader сообщает, взят ли PNG из кеша
const CacheHeader = "X-Cache"

var (
	errBadParam = errors.New("bad parameter")
	errNotFound = errors.New("not found")
)

// DungeonView - краткое описание подземелья
type DungeonView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Rooms int    `json:"rooms"`
}

// LevelView описывает сетку блоков уровня и размер его развёртки
type LevelView struct {
	Level        int      `json:"level"`
	Blocks       []string `json:"blocks"`
	UnfoldWidth  int      `json:"unfold_width"`
	UnfoldHeight int      `json:"unfold_height"`
}

type CoordView struct {
	X uint8 `json:"x"`
	Y uint8 `json:"y"`
}

type MonsterView struct {
	CoordView
	Kind uint8 `json:"kind"`
}

type TargetView struct {
	CoordView
	Tile uint8 `json:"tile"`
}

type TriggerView struct {
	CoordView
	Targets []TargetView `json:"targets"`
}

// RoomView - комната боя в виде JSON
type RoomView struct {
	Dungeon  string                          `json:"dungeon"`
	Index    int                             `json:"index"`
	Area     [combat.Size][combat.Size]uint8 `json:"area"`
	Entries  map[string][]CoordView          `json:"entries"`
	Monsters []MonsterView                   `json:"monsters"`
	Triggers []TriggerView                   `json:"triggers"`
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadParam):
		status = http.StatusBadRequest
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}

// findDungeon ищет подземелье по индексу или имени (без учёта регистра)
func (rs *RestServer) findDungeon(id string) (int, *dungeon.Dungeon, error) {
	if i, err := strconv.Atoi(id); err == nil {
		if i < 0 || i >= len(rs.dungeons) {
			return 0, nil, fmt.Errorf("%w: подземелье %d", errNotFound, i)
		}
		return i, rs.dungeons[i], nil
	}
	for i, d := range rs.dungeons {
		if strings.EqualFold(d.Name, id) {
			return i, d, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: подземелье %q", errNotFound, id)
}

func parseIndex(raw, name string, limit int) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: неверный параметр %s: %q", errBadParam, name, raw)
	}
	if i < 0 || i >= limit {
		return 0, fmt.Errorf("%w: %s %d вне диапазона 0..%d", errNotFound, name, i, limit-1)
	}
	return i, nil
}

// parseFlag читает булев query-параметр, пустое значение - def
func parseFlag(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: неверный параметр %s: %q", errBadParam, name, raw)
	}
	return v, nil
}

func (rs *RestServer) renderOptions(c *gin.Context) (render.Options, error) {
	opts := rs.defaults
	var err error
	if opts.Unfold, err = parseFlag(c, "unfold", opts.Unfold); err != nil {
		return opts, err
	}
	if opts.ShowMonsters, err = parseFlag(c, "monsters", opts.ShowMonsters); err != nil {
		return opts, err
	}
	if opts.ShowSecrets, err = parseFlag(c, "secrets", opts.ShowSecrets); err != nil {
		return opts, err
	}
	return opts, nil
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	cpuPercent, _ := rs.metrics.GetCPUUsage()

	body := gin.H{
		"status":      "ok",
		"time":        time.Now().Unix(),
		"uptime":      rs.metrics.GetUptime(),
		"memory_mb":   rs.metrics.GetMemoryUsage(),
		"cpu_percent": cpuPercent,
		"memory":      rs.metrics.GetDetailedMemoryStats(),
		"dungeons":    len(rs.dungeons),
	}
	if rs.images != nil {
		body["image_cache"] = rs.images.GetMetrics()
	}
	c.JSON(http.StatusOK, body)
}

// handleListDungeons возвращает список подземелий
func (rs *RestServer) handleListDungeons(c *gin.Context) {
	views := make([]DungeonView, 0, len(rs.dungeons))
	for i, d := range rs.dungeons {
		views = append(views, dungeonView(i, d))
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Список подземелий получен",
		Data:    views,
	})
}

// handleGetDungeon возвращает подземелье с сеткой блоков всех уровней
func (rs *RestServer) handleGetDungeon(c *gin.Context) {
	i, d, err := rs.findDungeon(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	levels := make([]LevelView, 0, dungeon.Levels)
	for z := range d.Floors {
		lv := LevelView{
			Level:  z,
			Blocks: strings.Split(strings.TrimSuffix(d.Floors[z].String(), "\n"), "\n"),
		}
		p, err := dungeon.Unfold(d.Floors[z])
		if err != nil {
			respondError(c, err)
			return
		}
		lv.UnfoldWidth, lv.UnfoldHeight = p.Width(), p.Height()
		levels = append(levels, lv)
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Подземелье получено",
		Data: gin.H{
			"dungeon": dungeonView(i, d),
			"levels":  levels,
		},
	})
}

// handleLevelImage рисует уровень в PNG. Имя уровня может оканчиваться на .png
func (rs *RestServer) handleLevelImage(c *gin.Context) {
	_, d, err := rs.findDungeon(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	z, err := parseIndex(strings.TrimSuffix(c.Param("level"), ".png"), "level", dungeon.Levels)
	if err != nil {
		respondError(c, err)
		return
	}
	opts, err := rs.renderOptions(c)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+render.FileName(d.Name, z, opts.Unfold)+`"`)

	ctx := c.Request.Context()
	key := imageKey(d.Name, z, opts)
	if rs.images != nil {
		data, err := rs.images.Get(ctx, key)
		if err == nil {
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, "image/png", data)
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			rs.log.Warn("Кеш изображений недоступен: %v", err)
		}
	}

	img, err := rs.renderer.Render(ctx, d, z, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		respondError(c, err)
		return
	}

	if rs.images != nil {
		if err := rs.images.Set(ctx, key, buf.Bytes(), 0); err != nil {
			rs.log.Warn("Не удалось сохранить %s в кеш: %v", key, err)
		}
	}
	c.Header(CacheHeader, "MISS")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// imageKey строит ключ кеша для уровня и режима отрисовки
func imageKey(name string, z int, opts render.Options) string {
	return fmt.Sprintf("png:%s:%d:%s:m%t:s%t", strings.ToLower(name), z, opts.Mode(), opts.ShowMonsters, opts.ShowSecrets)
}

// handleLevelText возвращает текстовый дамп уровня: сетку блоков и тайлы
func (rs *RestServer) handleLevelText(c *gin.Context) {
	_, d, err := rs.findDungeon(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	z, err := parseIndex(c.Param("level"), "level", dungeon.Levels)
	if err != nil {
		respondError(c, err)
		return
	}

	var sb strings.Builder
	sb.WriteString(d.Floors[z].String())
	sb.WriteByte('\n')
	sb.WriteString(d.LevelText(z))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sb.String()))
}

// handleRoom возвращает комнату боя подземелья
func (rs *RestServer) handleRoom(c *gin.Context) {
	_, d, err := rs.findDungeon(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := parseIndex(c.Param("room"), "room", dungeon.RoomCount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Комната получена",
		Data:    roomView(d.Name, n, d.Rooms[n]),
	})
}

func dungeonView(i int, d *dungeon.Dungeon) DungeonView {
	var empty [combat.Size][combat.Size]uint8
	rooms := 0
	for _, r := range d.Rooms {
		if r.Area != empty {
			rooms++
		}
	}
	return DungeonView{Index: i, Name: d.Name, Kind: d.Kind.String(), Rooms: rooms}
}

func lessCoord(a, b CoordView) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

func roomView(name string, n int, m *combat.CombatMap) RoomView {
	v := RoomView{
		Dungeon:  name,
		Index:    n,
		Area:     m.Area,
		Entries:  make(map[string][]CoordView, len(m.PlayerEntry)),
		Monsters: make([]MonsterView, 0, len(m.Monsters)),
		Triggers: make([]TriggerView, 0, len(m.Triggers)),
	}

	for dir, entries := range m.PlayerEntry {
		coords := make([]CoordView, 0, len(entries))
		for _, e := range entries {
			coords = append(coords, CoordView{X: e.X, Y: e.Y})
		}
		v.Entries[combat.Direction(dir).String()] = coords
	}

	for pos, kind := range m.Monsters {
		v.Monsters = append(v.Monsters, MonsterView{CoordView: CoordView{X: pos.X, Y: pos.Y}, Kind: kind})
	}
	sort.Slice(v.Monsters, func(i, j int) bool {
		return lessCoord(v.Monsters[i].CoordView, v.Monsters[j].CoordView)
	})

	for pos, targets := range m.Triggers {
		tv := TriggerView{CoordView: CoordView{X: pos.X, Y: pos.Y}}
		for t, tile := range targets {
			tv.Targets = append(tv.Targets, TargetView{CoordView: CoordView{X: t.X, Y: t.Y}, Tile: tile})
		}
		sort.Slice(tv.Targets, func(i, j int) bool {
			return lessCoord(tv.Targets[i].CoordView, tv.Targets[j].CoordView)
		})
		v.Triggers = append(v.Triggers, tv)
	}
	sort.Slice(v.Triggers, func(i, j int) bool {
		return lessCoord(v.Triggers[i].CoordView, v.Triggers[j].CoordView)
	})

	return v
}
