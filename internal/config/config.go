package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/annel0/dungeon-atlas/internal/cache"
	"github.com/annel0/dungeon-atlas/internal/render"
)

// Config корневая структура конфигурации приложения.
// Пустые поля заполняются значениями по умолчанию в Load.
type Config struct {
	Data      DataConfig        `yaml:"data"`
	Render    RenderConfig      `yaml:"render"`
	Server    ServerConfig      `yaml:"server"`
	Cache     CacheConfig       `yaml:"cache"`
	Images    cache.CacheConfig `yaml:"image_cache"`
	Telemetry TelemetryConfig   `yaml:"telemetry"`
	Logging   LoggingConfig     `yaml:"logging"`
}

type DataConfig struct {
	Path string `yaml:"path"`
}

type RenderConfig struct {
	ShowMonsters bool   `yaml:"show_monsters"`
	ShowSecrets  bool   `yaml:"show_secrets"`
	Unfold       bool   `yaml:"unfold"`
	OutputDir    string `yaml:"output_dir"`
	Workers      int    `yaml:"workers"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

const (
	defaultOutputDir   = "out"
	defaultCachePath   = ".cache/atlas"
	defaultHTTPPort    = 8090
	defaultServiceName = "dungeon-atlas"
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// GetDataPath возвращает каталог данных: config -> ULTIMA_V_PATH
func (d *DataConfig) GetDataPath() string {
	if d.Path != "" {
		return d.Path
	}
	return os.Getenv("ULTIMA_V_PATH")
}

// GetHTTPPort возвращает HTTP порт с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "DUNGEON_ATLAS_HTTP_PORT", defaultHTTPPort)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// RenderOptions собирает параметры рендерера
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		ShowMonsters: c.Render.ShowMonsters,
		ShowSecrets:  c.Render.ShowSecrets,
		Unfold:       c.Render.Unfold,
		Workers:      c.Render.Workers,
	}
}

func (c *Config) applyDefaults() {
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = defaultOutputDir
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = runtime.NumCPU()
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = defaultServiceName
	}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV DUNGEON_ATLAS_CONFIG,
// иначе возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DUNGEON_ATLAS_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}
