package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/batchsort/pkg/cache"
	apperrors "github.com/matzehuels/batchsort/pkg/errors"
	"github.com/matzehuels/batchsort/pkg/pipeline"
	"github.com/matzehuels/batchsort/pkg/store"
)

// configFile is the config file name inside the config directory.
const configFile = "config.toml"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the contents of config.toml. Command-line flags override it.
type Config struct {
	ApplyUnchanged bool         `toml:"apply_unchanged"`
	Concurrency    int          `toml:"concurrency"`
	Cache          CacheConfig  `toml:"cache"`
	Server         ServerConfig `toml:"server"`
	Store          StoreConfig  `toml:"store"`
}

// CacheConfig selects and configures the report cache.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	TTL       string `toml:"ttl"`
	RedisAddr string `toml:"redis_addr,omitempty"`
	Prefix    string `toml:"prefix,omitempty"`
}

// TTLDuration returns the parsed TTL, or the default report TTL if it is
// unset or invalid.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return cache.TTLReport
	}
	return d
}

// ServerConfig configures "batchsort serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig configures report persistence for the server. Reports are
// kept in memory when MongoURI is empty.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri,omitempty"`
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Concurrency: pipeline.DefaultConcurrency,
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.TTLReport.String(),
		},
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Database: store.DefaultDatabase},
	}
}

// Validate checks value ranges and backend settings.
func (c *Config) Validate() error {
	if c.Concurrency < 1 || c.Concurrency > pipeline.MaxConcurrency {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "concurrency must be between 1 and %d", pipeline.MaxConcurrency)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if err := apperrors.ValidateAddr(c.Cache.RedisAddr); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "cache.redis_addr")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown cache backend %q (want %s, %s or %s)",
			c.Cache.Backend, BackendFile, BackendRedis, BackendNone)
	}
	if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "invalid cache.ttl %q", c.Cache.TTL)
	}
	if err := apperrors.ValidateAddr(c.Server.Addr); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "server.addr")
	}
	if c.Store.MongoURI != "" {
		if err := apperrors.ValidateMongoURI(c.Store.MongoURI); err != nil {
			return err
		}
	}
	return nil
}

// configPath returns the default config file path.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing default file yields DefaultConfig; a missing
// explicit file is an error. Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// =============================================================================
// config command
// =============================================================================

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(c.config())
		},
	}
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), c.configPath)
				return nil
			}
			p, err := configPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			if _, err := os.Stat(p); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), p, StyleDim.Render("(not present, using defaults)"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}
