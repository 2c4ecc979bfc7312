package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/dungeon-atlas/internal/render"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DUNGEON_ATLAS_CONFIG", "")
	t.Setenv("DUNGEON_ATLAS_HTTP_PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Render.OutputDir)
	assert.Equal(t, runtime.NumCPU(), cfg.Render.Workers)
	assert.Equal(t, ".cache/atlas", cfg.Cache.Path)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "dungeon-atlas", cfg.Telemetry.ServiceName)
	assert.Equal(t, 8090, cfg.Server.GetHTTPPort())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  path: /games/u5
render:
  unfold: true
  show_secrets: true
  workers: 2
server:
  http_port: 9000
cache:
  enabled: true
image_cache:
  backend: memory
  default_ttl: 90s
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/games/u5", cfg.Data.GetDataPath())
	assert.Equal(t, 9000, cfg.Server.GetHTTPPort())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, ".cache/atlas", cfg.Cache.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Images.Backend)
	assert.Equal(t, 90*time.Second, cfg.Images.DefaultTTL)
	assert.Equal(t, render.Options{ShowSecrets: true, Unfold: true, Workers: 2}, cfg.RenderOptions())
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  output_dir: png\n"), 0o644))
	t.Setenv("DUNGEON_ATLAS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "png", cfg.Render.OutputDir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("ULTIMA_V_PATH", "/opt/u5")
	t.Setenv("DUNGEON_ATLAS_HTTP_PORT", "7070")

	var cfg Config
	assert.Equal(t, "/opt/u5", cfg.Data.GetDataPath())
	assert.Equal(t, 7070, cfg.Server.GetHTTPPort())

	t.Setenv("DUNGEON_ATLAS_HTTP_PORT", "not-a-port")
	assert.Equal(t, 8090, cfg.Server.GetHTTPPort())
}
