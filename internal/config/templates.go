package config

import (
	"os"
	"path/filepath"
)

const configTemplate = `# taframe Configuration
# All keys are optional; commented values show the defaults.

[engine]
# Worker goroutines for indicator computation (1 = sequential)
workers = 1

[data]
# Directory for the SQLite database and exported files
# dir = "~/.config/taframe/data"
# Explicit database file path (overrides dir-derived default)
# database_file = ""
# Timeframe label recorded with imported candles
default_timeframe = "1day"

[backtest]
# Starting funds for backtest runs
initial_funds = 100000.0
# Orders below this amount are rejected
min_order_amount = 0.0
# Fraction of available funds committed per buy (0..1]
size_fraction = 1.0

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to the terminal
console = true
# Log to a rotated file
file = true
# file_path = "~/.config/taframe/logs/taframe.log"
max_size_mb = 100
max_backups = 7
max_age_days = 30

[ui]
# Enable colored output
color_enabled = true
# Date format for table output
date_format = "2006-01-02"
`

// createTemplateConfig writes a commented config template so the next
// run has something to edit. Errors are ignored by the caller since the
// defaults work without a file.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(configTemplate), 0644)
}
