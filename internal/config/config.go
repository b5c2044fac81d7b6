// Package config loads the mdhl configuration from files and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oligo/mdhl/highlight"
	"github.com/oligo/mdhl/internal/logging"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	envPrefix       = "MDHL"
	localConfigFile = ".mdhl.yaml"
)

// Config holds all configuration options for mdhl.
type Config struct {
	InlineHighlighting bool        `mapstructure:"inline_highlighting"`
	LivePreview        bool        `mapstructure:"live_preview"`
	Theme              string      `mapstructure:"theme"`
	DisabledLanguages  []string    `mapstructure:"disabled_languages"`
	LogLevel           string      `mapstructure:"log_level"`
	Cache              CacheConfig `mapstructure:"cache"`
}

// CacheConfig configures the token cache.
type CacheConfig struct {
	TTL     time.Duration `mapstructure:"ttl"`
	Cleanup time.Duration `mapstructure:"cleanup"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		InlineHighlighting: true,
		LivePreview:        true,
		Theme:              highlight.DefaultTheme,
		DisabledLanguages:  []string{"mermaid"},
		LogLevel:           "info",
		Cache: CacheConfig{
			TTL:     highlight.DefaultCacheTTL,
			Cleanup: highlight.DefaultCacheCleanup,
		},
	}
}

// ChromaOptions returns the tokenizer options of c.
func (c Config) ChromaOptions() highlight.ChromaOptions {
	return highlight.ChromaOptions{
		Theme:             c.Theme,
		DisabledLanguages: c.DisabledLanguages,
		CacheTTL:          c.Cache.TTL,
		CacheCleanup:      c.Cache.Cleanup,
	}
}

// Validate checks the values that cannot be defaulted silently.
func (c Config) Validate() error {
	if !highlight.HasTheme(c.Theme) {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidConfig, c.Theme)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache.ttl must be positive, got %s", ErrInvalidConfig, c.Cache.TTL)
	}
	if c.Cache.Cleanup <= 0 {
		return fmt.Errorf("%w: cache.cleanup must be positive, got %s", ErrInvalidConfig, c.Cache.Cleanup)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	defaults := Defaults()
	v.SetDefault("inline_highlighting", defaults.InlineHighlighting)
	v.SetDefault("live_preview", defaults.LivePreview)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("disabled_languages", defaults.DisabledLanguages)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.cleanup", defaults.Cache.Cleanup)
}

// Load reads the configuration into v and returns it validated. When path is
// empty the lookup order is:
//  1. .mdhl.yaml (current directory)
//  2. ~/.config/mdhl/config.yaml
//
// A missing file is not an error. MDHL_* environment variables override file
// values, e.g. MDHL_CACHE_TTL for cache.ttl.
func Load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(localConfigFile); err == nil {
		v.SetConfigFile(localConfigFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mdhl"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	return Decode(v)
}

// Decode returns the validated configuration currently held by v, e.g. after
// viper re-read a watched config file.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
