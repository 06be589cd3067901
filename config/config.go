// Package config loads and saves the YAML configuration for a plusdb
// server: where its tables live on disk, the B+Tree order new tables are
// built with, and the optional at-rest encryption and API key.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk shape of a plusdb server's configuration file.
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Bind     string   `yaml:"bind"`
	Port     int      `yaml:"port"`
	Order    int      `yaml:"order"`
	Security Security `yaml:"security"`
	Logging  Logging  `yaml:"logging"`
}

// Security holds the optional API key and at-rest encryption key, both
// stored hex-encoded.
type Security struct {
	APIKey        string `yaml:"api_key"`
	EncryptionKey string `yaml:"encryption_key"` // hex, empty means snapshots are written in the clear
}

// Logging holds the configured log level. It is loaded and saved with the
// rest of the file; the server does not read it.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration a freshly bootstrapped server
// starts from.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Bind:    "127.0.0.1",
		Port:    8080,
		Order:   64,
		Logging: Logging{Level: "info"},
	}
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its parent directory if necessary. The
// file is written with owner-only permissions since it may carry an
// encryption key.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// GenerateKey returns a cryptographically random, hex-encoded key of n
// raw bytes.
func GenerateKey(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("config: generating key: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// EncryptionKeyBytes decodes the configured hex encryption key, returning
// nil (not an error) when none is set, so callers can pass the result
// straight to snapshot.NewStore.
func (c *Config) EncryptionKeyBytes() ([]byte, error) {
	if c.Security.EncryptionKey == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(c.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("config: encryption_key is not valid hex: %w", err)
	}
	return raw, nil
}

// Bootstrap builds a DefaultConfig with freshly generated API and
// encryption keys and writes it to path.
func Bootstrap(path, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	apiKey, err := GenerateKey(32)
	if err != nil {
		return nil, err
	}
	cfg.Security.APIKey = apiKey

	encKey, err := GenerateKey(32)
	if err != nil {
		return nil, err
	}
	cfg.Security.EncryptionKey = encKey

	if err := Save(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Exists reports whether a configuration file is already present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
