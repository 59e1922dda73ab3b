package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cranestack/pkg/pipeline"
)

// Output formats accepted by output.format.
const (
	formatText = "text"
	formatJSON = "json"
)

// Config holds persistent defaults read from config.toml. Command-line flags
// take precedence over every value here.
type Config struct {
	Cache  cacheConfig  `toml:"cache"`
	Serve  serveConfig  `toml:"serve"`
	Output outputConfig `toml:"output"`
}

type cacheConfig struct {
	Enabled   bool          `toml:"enabled"`
	TTL       time.Duration `toml:"ttl"`        // e.g. "12h"
	RedisAddr string        `toml:"redis_addr"` // empty selects the file cache
}

type serveConfig struct {
	Addr string `toml:"addr"`
}

type outputConfig struct {
	Format string `toml:"format"` // text or json
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Cache:  cacheConfig{Enabled: true, TTL: pipeline.DefaultCacheTTL},
		Serve:  serveConfig{Addr: ":8080"},
		Output: outputConfig{Format: formatText},
	}
}

// loadConfig reads path on top of the defaults. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Output.Format {
	case formatText, formatJSON:
	default:
		return fmt.Errorf("output.format must be %q or %q, got %q", formatText, formatJSON, c.Output.Format)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

// configPath returns the config file location using XDG standard
// (~/.config/cranestack/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
