// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taframe/internal/frame"
	"taframe/internal/logging"
	"taframe/internal/store"
)

// addDataCommands adds candle data management commands.
func addDataCommands(rootCmd *cobra.Command, app *App) {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage stored candle data",
		Long:  "Import, export and inspect candle data in the local database.",
	}

	dataCmd.AddCommand(newDataImportCmd(app))
	dataCmd.AddCommand(newDataExportCmd(app))
	dataCmd.AddCommand(newDataListCmd(app))

	rootCmd.AddCommand(dataCmd)
}

func newDataImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import candles from a CSV file",
		Long: `Import candles from a CSV file into the local database.

The file must have a timestamp,open,high,low,close,volume header.
Rows that share a timestamp with stored candles are replaced.`,
		Example: `  taframe data import candles.csv --symbol RELIANCE
  taframe data import infy_1h.csv --symbol INFY --timeframe 1hour`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			if symbol == "" {
				output.Error("--symbol is required")
				return fmt.Errorf("--symbol is required")
			}
			symbol = strings.ToUpper(symbol)

			if app.Store == nil {
				output.Error("Store not initialized")
				return fmt.Errorf("store not initialized")
			}

			candles, err := store.LoadCandlesCSV(args[0])
			if err != nil {
				output.Error("Failed to read candles: %v", err)
				return err
			}

			timeframe := resolveTimeframe(cmd, app)
			if err := app.Store.SaveCandles(ctx, symbol, timeframe, candles); err != nil {
				output.Error("Failed to save candles: %v", err)
				return err
			}

			app.Logger.Info().
				Str("symbol", symbol).
				Str("timeframe", timeframe).
				Int("rows", len(candles)).
				Msg("Candles imported")

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    symbol,
					"timeframe": timeframe,
					"rows":      len(candles),
				})
			}
			output.Success("✓ Imported %d candles for %s (%s)", len(candles), symbol, timeframe)
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "symbol to store the candles under")
	cmd.Flags().String("timeframe", "", "candle timeframe (default from config)")

	return cmd
}

func newDataExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <symbol>",
		Short: "Export stored candles to a CSV file",
		Long: `Export stored candles to a CSV file.

With --indicators, previously saved indicator columns are joined to the
candles by timestamp and included in the output.`,
		Example: `  taframe data export RELIANCE --output reliance.csv
  taframe data export INFY --indicators --output infy_full.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			if app.Store == nil {
				output.Error("Store not initialized")
				return fmt.Errorf("store not initialized")
			}

			timeframe := resolveTimeframe(cmd, app)
			from, to, err := parseDateRange(cmd)
			if err != nil {
				return err
			}

			candles, err := app.Store.GetCandles(ctx, symbol, timeframe, from, to)
			if err != nil {
				output.Error("Failed to load candles: %v", err)
				return err
			}

			outFile, _ := cmd.Flags().GetString("output")
			if outFile == "" {
				outFile = fmt.Sprintf("%s_%s.csv", strings.ToLower(symbol), timeframe)
			}

			withIndicators, _ := cmd.Flags().GetBool("indicators")
			if !withIndicators {
				if err := store.SaveCandlesCSV(outFile, candles); err != nil {
					output.Error("Failed to write file: %v", err)
					return err
				}
				output.Success("✓ Exported %d candles to %s", len(candles), outFile)
				return nil
			}

			// Join stored indicator columns by timestamp
			f := frame.FromCandles(candles)
			columns, err := app.Store.GetIndicatorColumns(ctx, symbol, timeframe, f.Index())
			if err != nil {
				output.Error("Failed to load indicator columns: %v", err)
				return err
			}
			names := make([]string, 0, len(columns))
			for name := range columns {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if err := f.Attach(name, columns[name]); err != nil {
					output.Error("Failed to attach column: %v", err)
					return err
				}
			}

			if err := store.SaveFrameCSV(outFile, f); err != nil {
				output.Error("Failed to write file: %v", err)
				return err
			}
			output.Success("✓ Exported %d rows and %d indicator columns to %s",
				f.RowCount(), len(names), outFile)
			return nil
		},
	}

	cmd.Flags().String("output", "", "output file (default <symbol>_<timeframe>.csv)")
	cmd.Flags().String("timeframe", "", "candle timeframe (default from config)")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Bool("indicators", false, "include saved indicator columns")

	return cmd
}

func newDataListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored symbols",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger)

			if app.Store == nil {
				output.Error("Store not initialized")
				return fmt.Errorf("store not initialized")
			}

			infos, err := app.Store.ListSymbols(ctx)
			if err != nil {
				output.Error("Failed to list symbols: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(infos)
			}

			if len(infos) == 0 {
				output.Warning("No candle data stored. Use 'taframe data import' to add some.")
				return nil
			}

			table := NewTable(output, "SYMBOL", "TIMEFRAME", "ROWS", "FROM", "TO")
			for _, info := range infos {
				table.AddRow(
					info.Symbol,
					info.Timeframe,
					fmt.Sprintf("%d", info.Rows),
					FormatTimestamp(info.From),
					FormatTimestamp(info.To),
				)
			}
			table.Render()
			return nil
		},
	}
}
