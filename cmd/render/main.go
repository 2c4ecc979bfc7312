package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/annel0/dungeon-atlas/internal/config"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/gamedata"
	"github.com/annel0/dungeon-atlas/internal/logging"
	"github.com/annel0/dungeon-atlas/internal/observability"
	"github.com/annel0/dungeon-atlas/internal/render"
	"github.com/annel0/dungeon-atlas/internal/storage"
)

type cliFlags struct {
	configPath string
	dataDir    string
	outDir     string
	unfold     bool
	monsters   bool
	secrets    bool
	dump       bool
	dungeon    int
	level      int
}

func parseFlags(args []string) (*cliFlags, map[string]bool, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	f := &cliFlags{}
	fs.StringVar(&f.configPath, "config", "", "путь к YAML конфигурации")
	fs.StringVar(&f.dataDir, "data", "", "каталог с файлами игры (иначе ULTIMA_V_PATH)")
	fs.StringVar(&f.outDir, "out", "", "каталог для результатов")
	fs.BoolVar(&f.unfold, "unfold", false, "раскладывать уровни на плоскость")
	fs.BoolVar(&f.monsters, "monsters", false, "рисовать монстров")
	fs.BoolVar(&f.secrets, "secrets", false, "подсвечивать нажимные плиты")
	fs.BoolVar(&f.dump, "dump", false, "текстовый дамп вместо PNG")
	fs.IntVar(&f.dungeon, "dungeon", -1, "номер подземелья, -1 - все")
	fs.IntVar(&f.level, "level", -1, "номер уровня, -1 - все")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return f, set, nil
}

// apply переносит явно заданные флаги поверх конфигурации
func (f *cliFlags) apply(cfg *config.Config, set map[string]bool) {
	if set["data"] {
		cfg.Data.Path = f.dataDir
	}
	if set["out"] {
		cfg.Render.OutputDir = f.outDir
	}
	if set["unfold"] {
		cfg.Render.Unfold = f.unfold
	}
	if set["monsters"] {
		cfg.Render.ShowMonsters = f.monsters
	}
	if set["secrets"] {
		cfg.Render.ShowSecrets = f.secrets
	}
}

func main() {
	flags, set, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	flags.apply(cfg, set)

	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("render"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, flags)
	stop()

	logging.GetLoggerManager().CloseAll()
	if err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.CloseDefaultLogger()
}

func selectIndices(n, only int, what string) ([]int, error) {
	if only >= n {
		return nil, fmt.Errorf("%s %d вне диапазона 0..%d", what, only, n-1)
	}
	if only >= 0 {
		return []int{only}, nil
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all, nil
}

func run(ctx context.Context, cfg *config.Config, flags *cliFlags) error {
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("ошибка инициализации OpenTelemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	dataDir := cfg.Data.GetDataPath()
	if dataDir == "" {
		return fmt.Errorf("каталог данных не задан: используйте -data или ULTIMA_V_PATH")
	}

	repo, err := storage.OpenAtlasRepo(cfg.Cache.Enabled, cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("ошибка открытия кэша атласа: %w", err)
	}
	defer repo.Close()

	dataset, err := gamedata.Load(ctx, dataDir, repo)
	if err != nil {
		return err
	}

	dungeonIdx, err := selectIndices(len(dataset.Dungeons), flags.dungeon, "подземелье")
	if err != nil {
		return err
	}
	levels, err := selectIndices(dungeon.Levels, flags.level, "уровень")
	if err != nil {
		return err
	}
	selected := make([]*dungeon.Dungeon, 0, len(dungeonIdx))
	for _, i := range dungeonIdx {
		selected = append(selected, dataset.Dungeons[i])
	}

	outDir := cfg.Render.OutputDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать каталог %s: %w", outDir, err)
	}

	if flags.dump {
		return runDump(dataDir, outDir, dataset, selected, levels)
	}
	return runRender(ctx, cfg, outDir, dataset, selected, levels)
}

func runDump(dataDir, outDir string, dataset *gamedata.Dataset, selected []*dungeon.Dungeon, levels []int) error {
	for _, d := range selected {
		if err := dumpDungeon(outDir, d, levels); err != nil {
			return err
		}
	}

	rooms, err := gamedata.LoadOverworldRooms(dataDir)
	if err != nil {
		return err
	}
	if err := dumpRooms(filepath.Join(outDir, "brit_rooms.txt"), rooms); err != nil {
		return err
	}

	if err := dumpAtlas(outDir, dataset.Atlas); err != nil {
		return err
	}
	logging.Info("📝 Текстовые дампы записаны в %s", outDir)
	return nil
}

func runRender(ctx context.Context, cfg *config.Config, outDir string, dataset *gamedata.Dataset, selected []*dungeon.Dungeon, levels []int) error {
	opts := cfg.RenderOptions()
	renderer := render.New(dataset.Atlas, nil)

	emit := func(d *dungeon.Dungeon, z int, img *image.RGBA) error {
		path := filepath.Join(outDir, render.FileName(d.Name, z, opts.Unfold))
		if err := render.WritePNG(path, img); err != nil {
			return err
		}
		logging.Info("🖼️  %s", path)
		return nil
	}

	if len(levels) == dungeon.Levels {
		if err := renderer.RenderAll(ctx, selected, opts, emit); err != nil {
			return err
		}
	} else {
		for _, d := range selected {
			for _, z := range levels {
				img, err := renderer.Render(ctx, d, z, opts)
				if err != nil {
					return err
				}
				if err := emit(d, z, img); err != nil {
					return err
				}
			}
		}
	}

	logging.Info("✅ Отрисовано уровней: %d", len(selected)*len(levels))
	return nil
}
