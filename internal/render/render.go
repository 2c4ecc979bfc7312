package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/dungeon-atlas/internal/combat"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/logging"
	"github.com/annel0/dungeon-atlas/internal/terrain"
	"github.com/annel0/dungeon-atlas/internal/tiles"
	"github.com/annel0/dungeon-atlas/internal/vec"
)

// BlockPixels - сторона блока в пикселях
const BlockPixels = vec.BlockSize * tiles.Size

// ErrLevel возвращается при запросе несуществующего уровня
var ErrLevel = errors.New("level out of range")

// Цвета фона и подсветки механизмов
var (
	Background   = color.RGBA{0, 0, 0, 255}
	TriggerColor = color.RGBA{170, 0, 0, 255}
	TargetColor  = color.RGBA{0, 0, 170, 255}
	BothColor    = color.RGBA{170, 0, 170, 255}
)

// Options управляет отрисовкой
type Options struct {
	ShowMonsters bool // Рисовать монстров поверх комнат
	ShowSecrets  bool // Подсвечивать нажимные плиты и их цели
	Unfold       bool // Раскладывать тор на плоскость
	Workers      int  // Параллельность RenderAll, 0 - по числу CPU
}

// Mode возвращает метку режима для метрик и имён файлов
func (o Options) Mode() string {
	if o.Unfold {
		return "unfolded"
	}
	return "grid"
}

// Renderer рисует уровни подземелий по атласу тайлов
type Renderer struct {
	atlas   *tiles.Atlas
	metrics *Metrics
	tracer  trace.Tracer
}

// New создаёт рендерер. metrics может быть nil.
func New(atlas *tiles.Atlas, metrics *Metrics) *Renderer {
	return &Renderer{
		atlas:   atlas,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/annel0/dungeon-atlas/internal/render"),
	}
}

// Render рисует уровень z подземелья d
func (r *Renderer) Render(ctx context.Context, d *dungeon.Dungeon, z int, opts Options) (img *image.RGBA, err error) {
	ctx, span := r.tracer.Start(ctx, "render.level", trace.WithAttributes(
		attribute.String("dungeon", d.Name),
		attribute.Int("level", z),
		attribute.String("mode", opts.Mode()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if z < 0 || z >= dungeon.Levels {
		return nil, fmt.Errorf("%w: %s уровень %d", ErrLevel, d.Name, z)
	}

	start := time.Now()

	placement := dungeon.Identity()
	if opts.Unfold {
		placement, err = dungeon.Unfold(d.Floors[z])
		if err != nil {
			return nil, fmt.Errorf("раскладка %s уровень %d: %w", d.Name, z, err)
		}
	}

	img = image.NewRGBA(image.Rect(0, 0, placement.Width()*BlockPixels, placement.Height()*BlockPixels))
	for ly := placement.Min.Y; ly <= placement.Max.Y; ly++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for lx := placement.Min.X; lx <= placement.Max.X; lx++ {
			ox := (lx - placement.Min.X) * BlockPixels
			oy := (ly - placement.Min.Y) * BlockPixels

			phys, ok := placement.Physical(vec.Vec2{X: lx, Y: ly})
			if !ok {
				fill(img, ox, oy, BlockPixels, Background)
				continue
			}
			r.drawBlock(img, ox, oy, d, phys, z, opts)
		}
	}

	elapsed := time.Since(start)
	r.metrics.observe(d.Name, opts.Mode(), elapsed)
	logging.GetRenderLogger().Debug("%s уровень %d (%s) за %v", d.Name, z, opts.Mode(), elapsed)
	return img, nil
}

func (r *Renderer) drawBlock(img *image.RGBA, ox, oy int, d *dungeon.Dungeon, phys vec.Vec2, z int, opts Options) {
	for ty := 0; ty < vec.BlockSize; ty++ {
		for tx := 0; tx < vec.BlockSize; tx++ {
			td := d.ResolveTile(phys.X*vec.BlockSize+tx, phys.Y*vec.BlockSize+ty, z)
			r.drawTile(img, ox+tx*tiles.Size, oy+ty*tiles.Size, td, opts)
		}
	}
}

func (r *Renderer) drawTile(img *image.RGBA, ox, oy int, td dungeon.TileData, opts Options) {
	tile := td.Tile
	if opts.ShowMonsters && td.Monster != nil {
		tile = combat.MonsterTile(*td.Monster)
	}

	switch {
	case tile == 0 || int(tile) >= tiles.Count:
		fill(img, ox, oy, tiles.Size, Background)
		return
	case tile == terrain.DarknessTile:
		fill(img, ox, oy, tiles.Size, tiles.Palette[tiles.Black])
		return
	}

	highlight, lit := secretColor(td, opts)
	for row := 0; row < tiles.Size; row++ {
		for col := 0; col < tiles.Size; col++ {
			idx := r.atlas.Index(int(tile), row, col)
			c := tiles.Color(idx)
			if lit && idx == tiles.Black {
				c = highlight
			}
			img.SetRGBA(ox+col, oy+row, c)
		}
	}
}

// secretColor выбирает цвет подсветки для режима секретов
func secretColor(td dungeon.TileData, opts Options) (color.RGBA, bool) {
	if !opts.ShowSecrets {
		return color.RGBA{}, false
	}
	switch {
	case td.IsTrigger && td.IsTarget:
		return BothColor, true
	case td.IsTrigger:
		return TriggerColor, true
	case td.IsTarget:
		return TargetColor, true
	}
	return color.RGBA{}, false
}

func fill(img *image.RGBA, ox, oy, size int, c color.RGBA) {
	for y := oy; y < oy+size; y++ {
		for x := ox; x < ox+size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// EmitFunc получает готовый уровень. Вызовы сериализуются.
type EmitFunc func(d *dungeon.Dungeon, z int, img *image.RGBA) error

// RenderAll рисует все уровни всех подземелий параллельно. Порядок вызовов
// emit не определён, содержимое изображений от него не зависит.
func (r *Renderer) RenderAll(ctx context.Context, dungeons []*dungeon.Dungeon, opts Options, emit EmitFunc) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var emitMu sync.Mutex
	for _, d := range dungeons {
		for z := 0; z < dungeon.Levels; z++ {
			d, z := d, z
			g.Go(func() error {
				img, err := r.Render(ctx, d, z, opts)
				if err != nil {
					return err
				}
				emitMu.Lock()
				defer emitMu.Unlock()
				return emit(d, z, img)
			})
		}
	}
	return g.Wait()
}
