// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taframe/internal/config"
	"taframe/internal/indicators"
	"taframe/internal/logging"
	"taframe/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-25"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Registry *indicators.Registry
	Engine   *indicators.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	registry := indicators.NewDefaultRegistry()
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Engine:   indicators.NewEngine(registry, cfg.Engine.Workers),
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, database commands will be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.DatabasePath()).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "taframe",
		Short: "taframe - technical analysis indicator engine",
		Long: `taframe computes technical analysis indicators over OHLCV candle series.

Indicators are requested as compact specifiers like 'sma_14' or 'boll_20_2.5'.
Dependencies between indicators are resolved and computed automatically, and
results align row for row with the input candles.

Use 'taframe indicators' to list the available indicator kinds.
Use 'taframe help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/taframe)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addCoreCommands(rootCmd, app)
	addComputeCommands(rootCmd, app)
	addIndicatorCommands(rootCmd, app)
	addBacktestCommands(rootCmd, app)
	addDataCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("taframe v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Engine Configuration")
	output.Printf("  Workers:         %d\n", cfg.Engine.Workers)
	output.Println()

	output.Bold("Data Configuration")
	output.Printf("  Data Dir:        %s\n", cfg.Data.Dir)
	output.Printf("  Database:        %s\n", cfg.DatabasePath())
	output.Printf("  Timeframe:       %s\n", cfg.Data.DefaultTimeframe)
	output.Println()

	output.Bold("Backtest Configuration")
	output.Printf("  Initial Funds:   %.2f\n", cfg.Backtest.InitialFunds)
	output.Printf("  Min Order:       %.2f\n", cfg.Backtest.MinOrderAmount)
	output.Printf("  Size Fraction:   %.2f\n", cfg.Backtest.SizeFraction)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Console:         %v\n", cfg.Logging.Console)
	output.Printf("  File:            %v\n", cfg.Logging.File)
	output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)

	return nil
}
