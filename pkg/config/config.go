package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig holds all user-defined persistent settings.
type AppConfig struct {
	DataDir     string `json:"data_dir,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
	Debug       bool   `json:"debug,omitempty"`
}

// getConfigPath returns the absolute path to ~/.planctl.json
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".planctl.json"), nil
}

// Load reads the application configuration from disk, then applies
// environment overrides (a local .env file is honored when present).
// Returns a default configuration if the file does not exist.
func Load() (*AppConfig, error) {
	// Best effort; most setups have no .env at all.
	_ = godotenv.Load()

	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// Save writes the application configuration back to disk.
func Save(cfg *AppConfig) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("PLANCTL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("PLANCTL_USER"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.UserID = id
		}
	}
	if v := os.Getenv("PLANCTL_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.DataDir == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.DataDir = filepath.Join(homeDir, ".planctl")
		} else {
			cfg.DataDir = ".planctl"
		}
	}
	if cfg.UserID == 0 {
		cfg.UserID = 1
	}
}

// SchedulesDir is where the per-user raw CSV exports live.
func (c *AppConfig) SchedulesDir() string {
	return filepath.Join(c.DataDir, "user_schedules")
}

// URLStorePath is the JSON file mapping users to their source URLs.
func (c *AppConfig) URLStorePath() string {
	return filepath.Join(c.DataDir, "user_urls.json")
}

// ScreenshotsDir is where failed fetches drop their diagnostic captures.
func (c *AppConfig) ScreenshotsDir() string {
	return filepath.Join(c.DataDir, "screenshots")
}
