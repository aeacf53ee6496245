// Package config loads famtree.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "famtree.yaml"

// Config represents famtree.yaml.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Data   DataConfig   `mapstructure:"data" yaml:"data"`
	Search SearchConfig `mapstructure:"search" yaml:"search"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// Live runs the search widgets on the server.
	Live bool `mapstructure:"live" yaml:"live"`
	// Static is the directory served under /static.
	Static string `mapstructure:"static" yaml:"static"`
}

// DataConfig points at the dataset
type DataConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Watch bool   `mapstructure:"watch" yaml:"watch"`
	// Debounce groups bursts of file events into one reload.
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// SearchConfig tunes the search widget
type SearchConfig struct {
	Limit       int           `mapstructure:"limit" yaml:"limit"`
	GraceDelay  time.Duration `mapstructure:"grace_delay" yaml:"grace_delay"`
	Placeholder string        `mapstructure:"placeholder" yaml:"placeholder"`
}

// CacheConfig sizes the search result cache
type CacheConfig struct {
	MaxSizeMB int           `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAge    time.Duration `mapstructure:"max_age" yaml:"max_age"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8080, Static: "dist"},
		Data:   DataConfig{Path: "data.json", Watch: true, Debounce: 100 * time.Millisecond},
		Search: SearchConfig{Limit: 10, GraceDelay: 200 * time.Millisecond, Placeholder: "Rechercher une personne..."},
		Cache:  CacheConfig{MaxSizeMB: 16, MaxAge: 10 * time.Minute},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path, or famtree.yaml in dir when path is empty. A missing
// default file is not an error. Env vars prefixed FAMTREE_ override file
// values, e.g. FAMTREE_SERVER_PORT.
func Load(dir, path string) (*Config, error) {
	d := Default()
	v := viper.New()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.live", d.Server.Live)
	v.SetDefault("server.static", d.Server.Static)
	v.SetDefault("data.path", d.Data.Path)
	v.SetDefault("data.watch", d.Data.Watch)
	v.SetDefault("data.debounce", d.Data.Debounce)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.grace_delay", d.Search.GraceDelay)
	v.SetDefault("search.placeholder", d.Search.Placeholder)
	v.SetDefault("cache.max_size_mb", d.Cache.MaxSizeMB)
	v.SetDefault("cache.max_age", d.Cache.MaxAge)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	}

	v.SetEnvPrefix("FAMTREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Search.Limit < 1 {
		return fmt.Errorf("config: search.limit must be positive, got %d", c.Search.Limit)
	}
	if c.Search.GraceDelay < 0 || c.Data.Debounce < 0 {
		return errors.New("config: durations must not be negative")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
