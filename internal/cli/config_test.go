package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/batchsort/pkg/cache"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	if got := DefaultConfig().Cache.TTLDuration(); got != cache.TTLReport {
		t.Errorf("default TTL = %v, want %v", got, cache.TTLReport)
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
apply_unchanged = true
concurrency = 2

[cache]
backend = "redis"
ttl = "1h"
redis_addr = "localhost:6379"
prefix = "staging:"

[server]
addr = "127.0.0.1:9090"

[store]
mongo_uri = "mongodb://localhost:27017"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.ApplyUnchanged || cfg.Concurrency != 2 {
		t.Errorf("top-level = %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.Prefix != "staging:" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTLDuration() != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Cache.TTLDuration())
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("server.addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Database != "batchsort" {
		t.Errorf("store.database = %q, want default", cfg.Store.Database)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"zero concurrency", "concurrency = 0\n"},
		{"bad server addr", "[server]\naddr = \"nowhere\"\n"},
		{"bad mongo uri", "[store]\nmongo_uri = \"http://db\"\n"},
		{"not toml", "= = =\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
