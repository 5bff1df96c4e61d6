// Package config loads server configuration from an optional YAML file
// and GEOHEX_-prefixed environment variables, env winning.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr        string        `mapstructure:"addr"`
	DataDir     string        `mapstructure:"data_dir"`
	DatabaseDSN string        `mapstructure:"database_dsn"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	Log         LogConfig     `mapstructure:"log"`
	Overpass    OverpassConfig `mapstructure:"overpass"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type OverpassConfig struct {
	Endpoints []string `mapstructure:"endpoints"`
}

// Load reads path when non-empty; a missing explicit file is an error,
// no file at all is fine and leaves defaults plus env in charge.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("data_dir", "data")
	v.SetDefault("database_dsn", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", false)
	v.SetDefault("overpass.endpoints", []string{})

	v.SetEnvPrefix("GEOHEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
