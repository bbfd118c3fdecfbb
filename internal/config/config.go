// Package config loads pipeline settings from an optional YAML file, a .env
// file next to it, and OLIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"olist/internal/order"
)

// Config is the full set of pipeline settings.
type Config struct {
	DataDir         string       `mapstructure:"data_dir"`
	Status          string       `mapstructure:"status"`
	WithDistance    bool         `mapstructure:"with_distance"`
	DistinctSellers bool         `mapstructure:"distinct_sellers"`
	GeoTieBreak     string       `mapstructure:"geo_tiebreak"`
	Output          OutputConfig `mapstructure:"output"`
	Log             LogConfig    `mapstructure:"log"`
	Server          ServerConfig `mapstructure:"server"`

	// Anchor is the directory relative paths were resolved against.
	Anchor string `mapstructure:"-"`
}

// OutputConfig names where the composed table is written.
type OutputConfig struct {
	CSV    string `mapstructure:"csv"`
	SQLite string `mapstructure:"sqlite"`
	Table  string `mapstructure:"table"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig is the HTTP listen address for serve.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var defaults = map[string]any{
	"data_dir":         filepath.Join("data", "csv"),
	"status":           order.StatusDelivered,
	"with_distance":    false,
	"distinct_sellers": false,
	"geo_tiebreak":     string(order.TieLowest),
	"output.csv":       "",
	"output.sqlite":    "",
	"output.table":     "training_data",
	"log.level":        "info",
	"log.format":       "console",
	"server.addr":      ":8080",
}

// Load reads configPath when it is not empty. Relative paths in the result
// are anchored on the config file's directory, or on the executable's
// directory when there is no config file.
func Load(configPath string) (*Config, error) {
	anchor, err := anchorDir(configPath)
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(anchor, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("OLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	cfg.Anchor = anchor
	cfg.DataDir = cfg.Resolve(cfg.DataDir)
	cfg.Output.CSV = cfg.Resolve(cfg.Output.CSV)
	cfg.Output.SQLite = cfg.Resolve(cfg.Output.SQLite)
	return &cfg, nil
}

// Resolve anchors a relative path. Empty paths stay empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Anchor, path)
}

// Validate checks values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if _, err := order.ParseTieBreak(c.GeoTieBreak); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Output.SQLite != "" && c.Output.Table == "" {
		return fmt.Errorf("output.table is required when output.sqlite is set")
	}
	return nil
}

// OrderOptions converts the extractor settings.
func (c *Config) OrderOptions() order.Options {
	tb, err := order.ParseTieBreak(c.GeoTieBreak)
	if err != nil {
		tb = order.TieLowest
	}
	return order.Options{DistinctSellers: c.DistinctSellers, GeoTieBreak: tb}
}

func anchorDir(configPath string) (string, error) {
	if configPath != "" {
		abs, err := filepath.Abs(configPath)
		if err != nil {
			return "", fmt.Errorf("resolve config path failed: %w", err)
		}
		return filepath.Dir(abs), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable failed: %w", err)
	}
	return filepath.Dir(exe), nil
}
