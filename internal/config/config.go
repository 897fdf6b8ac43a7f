// Package config handles reading and writing the newman configuration file
// (~/.newman/config.toml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Store modes for the alert journal.
const (
	StoreLocal  = "local"
	StoreRemote = "remote"
	StoreOff    = "off"
)

// Config holds newman configuration settings.
type Config struct {
	LogLevel       string `toml:"log_level,omitempty" json:"log_level,omitempty"`
	LogFormat      string `toml:"log_format,omitempty" json:"log_format,omitempty"`
	AlertThreshold string `toml:"alert_threshold,omitempty" json:"alert_threshold,omitempty"`
	StoreMode      string `toml:"store_mode,omitempty" json:"store_mode,omitempty"`
	DBPath         string `toml:"db_path,omitempty" json:"db_path,omitempty"`
	RemoteURL      string `toml:"remote_url,omitempty" json:"remote_url,omitempty"`
}

// validKeys lists the allowed configuration keys.
var validKeys = map[string]bool{
	"log_level":       true,
	"log_format":      true,
	"alert_threshold": true,
	"store_mode":      true,
	"db_path":         true,
	"remote_url":      true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{"alert_threshold", "db_path", "log_format", "log_level", "remote_url", "store_mode"}
}

// Dir returns the newman data directory (~/.newman).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".newman")
	}
	return filepath.Join(home, ".newman")
}

// Path returns the default config file path (~/.newman/config.toml).
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDBPath returns the default alert journal path (~/.newman/alerts.db).
func DefaultDBPath() string {
	return filepath.Join(Dir(), "alerts.db")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from a specific path. Returns an empty Config if
// the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	for _, key := range ValidKeys() {
		v, _ := cfg.Get(key)
		if err := validate(key, v); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return &cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to a specific path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the string value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "alert_threshold":
		return c.AlertThreshold, nil
	case "store_mode":
		return c.StoreMode, nil
	case "db_path":
		return c.DBPath, nil
	case "remote_url":
		return c.RemoteURL, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set assigns a value to a configuration key.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	if err := validate(key, value); err != nil {
		return err
	}
	switch key {
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "alert_threshold":
		c.AlertThreshold = value
	case "store_mode":
		c.StoreMode = value
	case "db_path":
		c.DBPath = value
	case "remote_url":
		c.RemoteURL = value
	}
	return nil
}

func validate(key, value string) error {
	if value == "" {
		return nil
	}
	switch key {
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return nil
		}
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", value)
	case "log_format":
		if value != "text" && value != "json" {
			return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", value)
		}
	case "alert_threshold":
		switch strings.ToLower(value) {
		case "info", "warning", "error", "critical":
			return nil
		}
		return fmt.Errorf("alert_threshold must be info, warning, error or critical, got %q", value)
	case "store_mode":
		if value != StoreLocal && value != StoreRemote && value != StoreOff {
			return fmt.Errorf("store_mode must be \"local\", \"remote\" or \"off\", got %q", value)
		}
	}
	return nil
}

// DBPathOrDefault returns the configured journal path or DefaultDBPath.
func (c *Config) DBPathOrDefault() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBPath()
}

// StoreTarget returns what store.Open should open for the configured mode:
// the remote URL, the journal path, or "" when the journal is off.
func (c *Config) StoreTarget() string {
	switch c.StoreMode {
	case StoreOff:
		return ""
	case StoreRemote:
		return c.RemoteURL
	}
	return c.DBPathOrDefault()
}
