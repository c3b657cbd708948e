package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Wallet WalletConfig `toml:"wallet"`
	Sync   SyncConfig   `toml:"sync"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// StoreConfig selects and configures the key-value backend.
type StoreConfig struct {
	Backend string `toml:"backend"` // "sqlite" or "memory"
	Path    string `toml:"path"`    // sqlite file; empty uses <data-dir>/prefdash.db
}

// WalletConfig holds the account key. An empty WIF means a fresh account
// is generated at startup.
type WalletConfig struct {
	WIF string `toml:"wif"`
}

// SyncConfig tunes the synchronizer.
type SyncConfig struct {
	ComputeDelayMS int `toml:"compute_delay_ms"`
}

// ComputeDelay returns the simulated computation latency as a duration.
func (c *Config) ComputeDelay() time.Duration {
	return time.Duration(c.Sync.ComputeDelayMS) * time.Millisecond
}

const defaultConfigContent = `[server]
port = 8090

[store]
backend = "sqlite"         # "sqlite" or "memory"
path = ""                  # empty uses <data-dir>/prefdash.db

[wallet]
wif = ""                   # WIF private key (or set PREFDASH_WALLET_WIF)

[sync]
compute_delay_ms = 800     # simulated latency before status writes
`

// Load reads and parses the TOML config from the given path. If the file
// does not exist, it creates a default config file at that path.
// Environment variables override values from the file with highest
// priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg, md)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML
// file. This catches cases like "port = 0" which would otherwise be
// silently replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("store", "backend") {
		if cfg.Store.Backend != "sqlite" && cfg.Store.Backend != "memory" {
			return fmt.Errorf("invalid store.backend %q: must be %q or %q", cfg.Store.Backend, "sqlite", "memory")
		}
	}
	if md.IsDefined("sync", "compute_delay_ms") {
		if cfg.Sync.ComputeDelayMS < 0 {
			return fmt.Errorf("invalid sync.compute_delay_ms %d: must be >= 0", cfg.Sync.ComputeDelayMS)
		}
	}
	return nil
}

// applyDefaults sets default values for fields the file did not set.
// compute_delay_ms consults the TOML metadata so an explicit 0 (delay
// disabled) is distinguishable from an omitted field.
func applyDefaults(cfg *Config, md toml.MetaData) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "sqlite"
	}
	if !md.IsDefined("sync", "compute_delay_ms") {
		cfg.Sync.ComputeDelayMS = 800
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PREFDASH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PREFDASH_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("PREFDASH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("PREFDASH_WALLET_WIF"); v != "" {
		cfg.Wallet.WIF = v
	}
	if v := os.Getenv("PREFDASH_COMPUTE_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Sync.ComputeDelayMS = ms
		}
	}
}

// validate checks the final merged configuration.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}
	if cfg.Store.Backend != "sqlite" && cfg.Store.Backend != "memory" {
		return fmt.Errorf("invalid store.backend %q: must be %q or %q", cfg.Store.Backend, "sqlite", "memory")
	}
	if cfg.Sync.ComputeDelayMS < 0 {
		return fmt.Errorf("invalid sync.compute_delay_ms %d: must be >= 0", cfg.Sync.ComputeDelayMS)
	}
	return nil
}
