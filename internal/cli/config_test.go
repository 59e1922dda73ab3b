package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[cache]
enabled = false
ttl = "90m"
redis_addr = "localhost:6379"

[serve]
addr = "127.0.0.1:9000"

[output]
format = "json"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Cache.Enabled {
		t.Error("cache.enabled should be false")
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("cache.ttl = %s, want 1h30m0s", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache.redis_addr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Serve.Addr != "127.0.0.1:9000" {
		t.Errorf("serve.addr = %q", cfg.Serve.Addr)
	}
	if cfg.Output.Format != formatJSON {
		t.Errorf("output.format = %q, want json", cfg.Output.Format)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := writeConfig(t, "[serve]\naddr = \":9999\"\n")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Serve.Addr != ":9999" {
		t.Errorf("serve.addr = %q, want :9999", cfg.Serve.Addr)
	}
	if !cfg.Cache.Enabled || cfg.Output.Format != formatText {
		t.Errorf("unset keys should keep defaults, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[cache\n", "parse"},
		{"format", "[output]\nformat = \"yaml\"\n", "output.format"},
		{"ttl", "[cache]\nttl = \"-1h\"\n", "cache.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestConfigPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	want := filepath.Join("/tmp/custom-config", appName, "config.toml")
	if path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
