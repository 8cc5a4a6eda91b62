package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Resolver  ResolverConfig  `yaml:"resolver" mapstructure:"resolver"`
	Curate    CurateConfig    `yaml:"curate" mapstructure:"curate"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the resolution cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds places directory API settings.
type PlacesConfig struct {
	APIKey       string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RadiusMeters int     `yaml:"radius_meters" mapstructure:"radius_meters"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxResults   int     `yaml:"max_results" mapstructure:"max_results"`
}

// AnthropicConfig holds Anthropic API settings for the grey-zone judge.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ResolverConfig holds resolution thresholds.
type ResolverConfig struct {
	MinConfidence    float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	DetailsThreshold float64 `yaml:"details_threshold" mapstructure:"details_threshold"`
	RequirePhoto     bool    `yaml:"require_photo" mapstructure:"require_photo"`
	RefreshPhotos    bool    `yaml:"refresh_photos" mapstructure:"refresh_photos"`
	GreyZoneMin      float64 `yaml:"grey_zone_min" mapstructure:"grey_zone_min"`
	GreyZoneMax      float64 `yaml:"grey_zone_max" mapstructure:"grey_zone_max"`
}

// CurateConfig holds curation weights.
type CurateConfig struct {
	KeepRatio        float64 `yaml:"keep_ratio" mapstructure:"keep_ratio"`
	ShuffleSeed      uint64  `yaml:"shuffle_seed" mapstructure:"shuffle_seed"`
	MaxShuffleOffset int     `yaml:"max_shuffle_offset" mapstructure:"max_shuffle_offset"`
}

// BatchConfig configures batch transforms.
type BatchConfig struct {
	GroupConcurrency int    `yaml:"group_concurrency" mapstructure:"group_concurrency"`
	DefaultScope     string `yaml:"default_scope" mapstructure:"default_scope"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLACELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "placelist.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.radius_meters", 50000)
	v.SetDefault("places.rate_limit", 5.0)
	v.SetDefault("places.max_results", 5)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 128)
	v.SetDefault("resolver.min_confidence", 0.70)
	v.SetDefault("resolver.details_threshold", 0.5)
	v.SetDefault("resolver.grey_zone_min", 0.35)
	v.SetDefault("resolver.grey_zone_max", 0.85)
	v.SetDefault("curate.keep_ratio", 1.0)
	v.SetDefault("curate.shuffle_seed", 0x5eed)
	v.SetDefault("curate.max_shuffle_offset", 2)
	v.SetDefault("batch.group_concurrency", 1)
	v.SetDefault("batch.default_scope", "point_of_interest")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode needs before any work starts.
// The places API key is required everywhere a resolver is built; a missing
// key is a startup failure, never a per-query one.
func (c *Config) Validate(mode string) error {
	var missing []string

	needResolver := func() {
		if c.Places.APIKey == "" {
			missing = append(missing, "places.api_key is required")
		}
		if c.Resolver.MinConfidence < 0 || c.Resolver.MinConfidence > 1 {
			missing = append(missing, "resolver.min_confidence must be in [0, 1]")
		}
		if c.Resolver.GreyZoneMin >= c.Resolver.GreyZoneMax {
			missing = append(missing, "resolver.grey_zone_min must be below grey_zone_max")
		}
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required for the postgres driver")
		}
	}

	switch mode {
	case "resolve", "batch":
		needResolver()
		if c.Curate.KeepRatio <= 0 || c.Curate.KeepRatio > 1 {
			missing = append(missing, "curate.keep_ratio must be in (0, 1]")
		}
	case "serve":
		needResolver()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "cache":
		needResolver()
		if c.Store.Driver == "" || c.Store.Driver == "none" {
			missing = append(missing, "store.driver is required for cache commands")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
