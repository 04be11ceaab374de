// Package config handles configuration for the embedded graph core.
//
// NornicDB is configured primarily via environment variables, with an
// optional YAML file for overriding settings that are awkward to express
// as a single env var. Only the core's own narrow surface is exposed here:
// where its data lives on disk, and a couple of ambient storage tunables.
// Everything else (server ports, auth, compliance, feature flags) belongs
// to collaborators outside the embedded core, not to this package.
//
// Example Usage:
//
//	cfg := config.LoadFromEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("invalid config: %v", err)
//	}
//
// Environment Variables:
//
//   - NORNICDB_DATA_DIR       - directory holding the WAL, snapshot, and
//     Badger files (default: "./data")
//   - NORNICDB_WAL_SYNC       - "true"/"false", whether the engine opens a
//     durable WAL at all; false runs pure in-memory with no crash recovery
//     (default: true)
//   - NORNICDB_BADGER_ENABLED - "true" to use the Badger-backed store,
//     "false" for the in-memory store (default: false)
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the ambient tunables the embedded core is allowed to honor.
//
// Use LoadFromEnv to build one from the environment, optionally layering a
// YAML file on top with LoadFromEnvAndFile.
type Config struct {
	// DataDir is the directory the storage layer opens its WAL, snapshot,
	// and (if enabled) Badger files under.
	DataDir string `yaml:"data_dir"`

	// WALSync controls whether the engine opens a durable WAL at startup.
	// Disabling it runs a pure in-memory engine with no crash recovery; the
	// core default is true.
	WALSync bool `yaml:"wal_sync"`

	// BadgerEnabled selects the Badger-backed Store over the in-memory one.
	BadgerEnabled bool `yaml:"badger_enabled"`
}

// DefaultConfig returns the configuration the core runs with when nothing
// else is specified.
func DefaultConfig() *Config {
	return &Config{
		DataDir:       "./data",
		WALSync:       true,
		BadgerEnabled: false,
	}
}

// LoadFromEnv builds a Config from environment variables, falling back to
// DefaultConfig for anything unset.
//
// Example:
//
//	os.Setenv("NORNICDB_DATA_DIR", "/var/lib/nornicdb")
//	cfg := config.LoadFromEnv()
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if dir := os.Getenv("NORNICDB_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if val := os.Getenv("NORNICDB_WAL_SYNC"); val != "" {
		cfg.WALSync = parseBool(val, cfg.WALSync)
	}
	if val := os.Getenv("NORNICDB_BADGER_ENABLED"); val != "" {
		cfg.BadgerEnabled = parseBool(val, cfg.BadgerEnabled)
	}

	return cfg
}

// parseBool parses a boolean from string, returning defaultVal on anything
// it doesn't recognize.
func parseBool(s string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultVal
	}
}

// LoadFile loads a Config from a YAML file. Fields absent from the file
// keep Go's zero value; callers that want file settings layered on top of
// defaults should use LoadFromEnvAndFile instead.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnvAndFile loads defaults, overlays an optional YAML file (ignored
// if path is empty or unreadable), then applies environment variables on
// top, so an operator can always override a file setting without editing it.
func LoadFromEnvAndFile(path string) *Config {
	cfg := DefaultConfig()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			fileCfg := *cfg
			if err := yaml.Unmarshal(data, &fileCfg); err == nil {
				if fileCfg.DataDir == "" {
					fileCfg.DataDir = cfg.DataDir
				}
				cfg = &fileCfg
			}
		}
	}

	if dir := os.Getenv("NORNICDB_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if val := os.Getenv("NORNICDB_WAL_SYNC"); val != "" {
		cfg.WALSync = parseBool(val, cfg.WALSync)
	}
	if val := os.Getenv("NORNICDB_BADGER_ENABLED"); val != "" {
		cfg.BadgerEnabled = parseBool(val, cfg.BadgerEnabled)
	}

	return cfg
}

// Validate checks the config for values the core cannot operate with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data dir must not be empty")
	}
	return nil
}
