// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	apperrors "taframe/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Data     DataConfig     `mapstructure:"data"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

// EngineConfig holds indicator engine configuration.
type EngineConfig struct {
	Workers int `mapstructure:"workers"`
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	Dir              string `mapstructure:"dir"`
	DatabaseFile     string `mapstructure:"database_file"`
	DefaultTimeframe string `mapstructure:"default_timeframe"`
}

// BacktestConfig holds backtest defaults.
type BacktestConfig struct {
	InitialFunds   float64 `mapstructure:"initial_funds"`
	MinOrderAmount float64 `mapstructure:"min_order_amount"`
	SizeFraction   float64 `mapstructure:"size_fraction"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/taframe"
	}
	return filepath.Join(home, ".config", "taframe")
}

// DatabasePath returns the SQLite file path, deriving it from the data
// directory when not set explicitly.
func (c *Config) DatabasePath() string {
	if c.Data.DatabaseFile != "" {
		return c.Data.DatabaseFile
	}
	return filepath.Join(c.Data.Dir, "taframe.db")
}

// Load loads configuration from the specified directory. If configDir
// is empty, the default config directory is used. A missing config file
// is not an error: a commented template is written for next time and
// the defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Best effort; defaults still apply if the write fails.
			createTemplateConfig(configDir)
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("engine.workers", 1)

	v.SetDefault("data.dir", filepath.Join(configDir, "data"))
	v.SetDefault("data.database_file", "")
	v.SetDefault("data.default_timeframe", "1day")

	v.SetDefault("backtest.initial_funds", 100000.0)
	v.SetDefault("backtest.min_order_amount", 0.0)
	v.SetDefault("backtest.size_fraction", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "taframe.log"))
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 30)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "2006-01-02")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TAFRAME_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Engine.Workers = workers
		}
	}
	if v := os.Getenv("TAFRAME_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("TAFRAME_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return fmt.Errorf("%w: engine workers must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Backtest.InitialFunds <= 0 {
		return fmt.Errorf("%w: backtest initial_funds must be positive", apperrors.ErrConfigInvalid)
	}
	if c.Backtest.MinOrderAmount < 0 {
		return fmt.Errorf("%w: backtest min_order_amount must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Backtest.SizeFraction <= 0 || c.Backtest.SizeFraction > 1 {
		return fmt.Errorf("%w: backtest size_fraction must be in (0, 1]", apperrors.ErrConfigInvalid)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging level %q (must be debug, info, warn or error)",
			apperrors.ErrConfigInvalid, c.Logging.Level)
	}
	return nil
}
