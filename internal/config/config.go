// Package config loads tool configuration from a TOML file and RUSKEL_*
// environment variables, and owns the cache directory layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type RenderConfig struct {
	AutoImpls    bool   `mapstructure:"auto_impls"`
	PrivateItems bool   `mapstructure:"private_items"`
	Format       string `mapstructure:"format"`
}

type FetchConfig struct {
	Offline        bool `mapstructure:"offline"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

type FeatureConfig struct {
	NoDefault bool     `mapstructure:"no_default"`
	Enabled   []string `mapstructure:"enabled"`
}

type Config struct {
	Render   RenderConfig  `mapstructure:"render"`
	Fetch    FetchConfig   `mapstructure:"fetch"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Features FeatureConfig `mapstructure:"features"`
}

// cacheBase returns the base cache directory for ruskel.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/ruskel as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "ruskel")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "ruskel")
	}
	return filepath.Join(os.TempDir(), "ruskel")
}

// JSONCacheDir returns the path to the rustdoc JSON cache directory.
func JSONCacheDir() string {
	return filepath.Join(cacheBase(), "json")
}

func InitializeViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "ruskel"))
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ruskel"))
	}

	viper.SetDefault("render.format", "markdown")
	viper.SetDefault("fetch.timeout_seconds", 60)
	viper.SetDefault("cache.dir", JSONCacheDir())

	viper.SetEnvPrefix("RUSKEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// stringToSliceHookFunc lets RUSKEL_FEATURES_ENABLED hold a comma-separated
// list where the TOML file holds an array.
func stringToSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf([]string{}) || f.Kind() != reflect.String {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if s == "" {
			return []string{}, nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

func Load() (*Config, error) {
	if err := InitializeViper(); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToSliceHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Render.Format != "rust" && config.Render.Format != "markdown" {
		return nil, fmt.Errorf("invalid render.format %q (expected rust or markdown)", config.Render.Format)
	}

	return &config, nil
}
