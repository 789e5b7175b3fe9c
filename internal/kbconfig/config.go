package kbconfig

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type DatabaseConfig struct {
	Driver      string `json:"driver"`
	SQLitePath  string `json:"sqlite_path"`
	PostgresDSN string `json:"postgres_dsn"`
}

type LogConfig struct {
	Level      string `json:"level"`
	Mode       string `json:"mode"`
	FilePath   string `json:"file_path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type ExportConfig struct {
	Dir string `json:"dir"`
}

type Config struct {
	Database DatabaseConfig `json:"database"`
	Log      LogConfig      `json:"log"`
	Export   ExportConfig   `json:"export"`
}

// defaultDataDir 返回 netkb 自身的数据目录（存放 netkb.db/json/log）
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".netkb")
}

func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Database: DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(dataDir, "netkb.db"),
		},
		Log: LogConfig{
			Level:      "info",
			Mode:       "production",
			FilePath:   filepath.Join(dataDir, "netkb.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Export: ExportConfig{
			Dir: filepath.Join(dataDir, "exports"),
		},
	}
}

func ConfigPath() string {
	if custom := strings.TrimSpace(os.Getenv("NETKB_CONFIG")); custom != "" {
		return custom
	}
	return filepath.Join(defaultDataDir(), "netkb.json")
}

func Load() (Config, error) {
	cfg := Default()

	// Layer 1: config file
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil && len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Default(), err
		}
	}

	// Layer 2: environment variables override
	applyEnvOverrides(&cfg)

	return cfg, nil
}

func Save(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("NETKB_DB_DRIVER")); v != "" {
		cfg.Database.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("NETKB_DB_PATH")); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv("NETKB_DB_DSN")); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("NETKB_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("NETKB_LOG_MODE")); v != "" {
		cfg.Log.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv("NETKB_EXPORT_DIR")); v != "" {
		cfg.Export.Dir = v
	}
}

func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.Log.Mode, "debug")
}
