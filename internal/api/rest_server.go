package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/dungeon-atlas/internal/cache"
	"github.com/annel0/dungeon-atlas/internal/dungeon"
	"github.com/annel0/dungeon-atlas/internal/logging"
	"github.com/annel0/dungeon-atlas/internal/middleware"
	"github.com/annel0/dungeon-atlas/internal/render"
)

// RestServer отдаёт уровни подземелий по HTTP
type RestServer struct {
	router   *gin.Engine
	server   *http.Server
	dungeons []*dungeon.Dungeon
	renderer *render.Renderer
	defaults render.Options
	images   cache.ImageCache
	port     string
	metrics  *ServerMetrics
	log      *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string               // адрес для запуска сервера
	Dungeons []*dungeon.Dungeon   // загруженные подземелья
	Renderer *render.Renderer     // рендерер уровней
	Defaults render.Options       // режимы отрисовки по умолчанию
	Images   cache.ImageCache     // кеш готовых PNG, может быть nil
	Registry *prometheus.Registry // регистр метрик, nil - новый
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8090"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("dungeon_atlas"))

	loggerMw := middleware.NewRequestLogger()
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware("dungeon_atlas", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	rs := &RestServer{
		router:   router,
		dungeons: config.Dungeons,
		renderer: config.Renderer,
		defaults: config.Defaults,
		images:   config.Images,
		port:     config.Port,
		metrics:  NewServerMetrics(),
		log:      logging.GetServerLogger(),
	}
	rs.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rs.setupRoutes()
	return rs
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/dungeons", rs.handleListDungeons)
		api.GET("/dungeons/:id", rs.handleGetDungeon)
		api.GET("/dungeons/:id/levels/:level", rs.handleLevelImage)
		api.GET("/dungeons/:id/levels/:level/text", rs.handleLevelText)
		api.GET("/dungeons/:id/rooms/:room", rs.handleRoom)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера (используется в тестах)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает REST сервер и блокируется до остановки
func (rs *RestServer) Start() error {
	rs.log.Info("REST API слушает %s", rs.port)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка HTTP сервера: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер, дожидаясь активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	rs.log.Info("Остановка REST API")
	return rs.server.Shutdown(ctx)
}
