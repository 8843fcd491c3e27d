package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	Backend            string `json:"backend"`     // "json" or "sqlite"
	ProjectPath        string `json:"projectPath"` // empty = backend default
	LogLevel           string `json:"logLevel"`
	LogFile            string `json:"logFile"` // empty = stderr
	NotificationMillis int    `json:"notificationMillis"`
	CompileTitle       string `json:"compileTitle"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Backend:            BackendJSON,
		LogLevel:           "warn",
		NotificationMillis: 3000,
		CompileTitle:       "Manuscript",
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.NotificationMillis == 0 {
		config.NotificationMillis = defaults.NotificationMillis
	}
	if config.CompileTitle == "" {
		config.CompileTitle = defaults.CompileTitle
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/quill/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
