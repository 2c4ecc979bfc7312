package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/dungeon-atlas/internal/api"
	"github.com/annel0/dungeon-atlas/internal/cache"
	"github.com/annel0/dungeon-atlas/internal/config"
	"github.com/annel0/dungeon-atlas/internal/gamedata"
	"github.com/annel0/dungeon-atlas/internal/logging"
	"github.com/annel0/dungeon-atlas/internal/observability"
	"github.com/annel0/dungeon-atlas/internal/render"
	"github.com/annel0/dungeon-atlas/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	dataDir := flag.String("data", "", "каталог с файлами игры (иначе ULTIMA_V_PATH)")
	port := flag.Int("port", 0, "HTTP порт (иначе из конфигурации)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *dataDir != "" {
		cfg.Data.Path = *dataDir
	}
	if *port > 0 {
		cfg.Server.HTTPPort = *port
	}

	// Инициализируем систему логирования
	logging.SetLogDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.SetLevel(level)

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	logging.Info("🗺️  Запуск сервера dungeon-atlas...")

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("ошибка инициализации OpenTelemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
		}
	}()

	repo, err := storage.OpenAtlasRepo(cfg.Cache.Enabled, cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("ошибка открытия кэша атласа: %w", err)
	}
	defer repo.Close()

	dataDir := cfg.Data.GetDataPath()
	if dataDir == "" {
		return fmt.Errorf("каталог данных не задан: используйте -data или ULTIMA_V_PATH")
	}
	dataset, err := gamedata.Load(ctx, dataDir, repo)
	if err != nil {
		return err
	}

	images, err := cache.New(cfg.Images)
	if err != nil {
		return fmt.Errorf("ошибка инициализации кеша изображений: %w", err)
	}
	if images != nil {
		defer images.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	restPort := fmt.Sprintf(":%d", cfg.Server.GetHTTPPort())
	server := api.NewRestServer(api.Config{
		Port:     restPort,
		Dungeons: dataset.Dungeons,
		Renderer: render.New(dataset.Atlas, render.NewMetrics(reg)),
		Defaults: cfg.RenderOptions(),
		Images:   images,
		Registry: reg,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logging.Info("✅ Сервер готов: %d подземелий", len(dataset.Dungeons))
	logging.Info("   🌐 REST API: http://localhost%s/api/dungeons", restPort)
	logging.Info("   ❤️  Health check: http://localhost%s/health", restPort)

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("📡 Получен сигнал %v, завершение работы...", sig)
	case err := <-errCh:
		return err
	}

	// === GRACEFUL SHUTDOWN ===
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(stopCtx); err != nil {
		return fmt.Errorf("ошибка остановки REST API: %w", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
	return nil
}
