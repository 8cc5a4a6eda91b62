package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "placelist.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/place", cfg.Places.BaseURL)
	assert.Equal(t, 50000, cfg.Places.RadiusMeters)
	assert.InDelta(t, 5.0, cfg.Places.RateLimit, 0.001)
	assert.Equal(t, 5, cfg.Places.MaxResults)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 128, cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 0.70, cfg.Resolver.MinConfidence, 0.001)
	assert.InDelta(t, 0.5, cfg.Resolver.DetailsThreshold, 0.001)
	assert.InDelta(t, 0.35, cfg.Resolver.GreyZoneMin, 0.001)
	assert.InDelta(t, 0.85, cfg.Resolver.GreyZoneMax, 0.001)
	assert.InDelta(t, 1.0, cfg.Curate.KeepRatio, 0.001)
	assert.Equal(t, 2, cfg.Curate.MaxShuffleOffset)
	assert.Equal(t, 1, cfg.Batch.GroupConcurrency)
	assert.Equal(t, "point_of_interest", cfg.Batch.DefaultScope)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/placelist
log:
  level: debug
  format: console
curate:
  keep_ratio: 0.7
batch:
  group_concurrency: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/placelist", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 0.7, cfg.Curate.KeepRatio, 0.001)
	assert.Equal(t, 4, cfg.Batch.GroupConcurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 50000, cfg.Places.RadiusMeters)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PLACELIST_STORE_DRIVER", "postgres")
	t.Setenv("PLACELIST_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("PLACELIST_PLACES_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-key", cfg.Places.APIKey)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = "placelist.db"
	cfg.Places.APIKey = "test-key"
	cfg.Resolver.MinConfidence = 0.70
	cfg.Resolver.GreyZoneMin = 0.35
	cfg.Resolver.GreyZoneMax = 0.85
	cfg.Curate.KeepRatio = 1.0
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"resolve", "batch", "serve", "cache"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Places.APIKey = ""

	err := cfg.Validate("resolve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "places.api_key is required")
}

func TestValidate_PostgresNeedsURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")
}

func TestValidate_GreyZoneOrdering(t *testing.T) {
	cfg := validDefaults()
	cfg.Resolver.GreyZoneMin = 0.9

	err := cfg.Validate("resolve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "grey_zone_min")
}

func TestValidate_KeepRatioBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Curate.KeepRatio = 0
	assert.Error(t, cfg.Validate("batch"))

	cfg.Curate.KeepRatio = 1.5
	assert.Error(t, cfg.Validate("batch"))

	cfg.Curate.KeepRatio = 0.5
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidate_CacheNeedsStore(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "none"

	err := cfg.Validate("cache")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidate_UnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
