// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taframe/internal/frame"
	"taframe/internal/logging"
	"taframe/internal/models"
	"taframe/internal/store"
)

// addComputeCommands adds the compute command.
func addComputeCommands(rootCmd *cobra.Command, app *App) {
	computeCmd := &cobra.Command{
		Use:   "compute <specifier>...",
		Short: "Compute indicator columns over a candle series",
		Long: `Compute one or more indicators over a candle series.

Each argument is an indicator specifier like 'sma_14', 'boll_20_2.5' or
'stochd_14_3'. Candles are read from a CSV file (--csv) or from the
local database (--symbol). Results align row for row with the input.

Examples:
  taframe compute sma_14 --csv candles.csv
  taframe compute rsi_14 boll_20 --symbol RELIANCE --limit 20
  taframe compute ema_21 --csv candles.csv --save out.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger)

			candles, source, err := loadCandles(ctx, cmd, app)
			if err != nil {
				output.Error("Failed to load candles: %v", err)
				return err
			}

			f := frame.FromCandles(candles)

			start := time.Now()
			result, err := app.Engine.Compute(ctx, f, args)
			if err != nil {
				output.Error("Failed to compute indicators: %v", err)
				return err
			}
			duration := time.Since(start)

			columns := result.Columns()
			for _, name := range columns {
				series, ok := result.Series(name)
				if !ok {
					continue
				}
				if err := f.Attach(name, series); err != nil {
					return err
				}
			}
			logging.LogComputation(app.Logger, len(columns), f.RowCount(), duration)

			if save, _ := cmd.Flags().GetString("save"); save != "" {
				if err := store.SaveFrameCSV(save, f); err != nil {
					output.Error("Failed to save frame: %v", err)
					return err
				}
				output.Success("✓ Saved %d rows to %s", f.RowCount(), save)
			}

			if saveDB, _ := cmd.Flags().GetBool("save-db"); saveDB {
				if err := saveColumnsToStore(ctx, cmd, app, f, result.Columns()); err != nil {
					output.Error("Failed to save to database: %v", err)
					return err
				}
				output.Success("✓ Saved %d columns to database", len(columns))
			}

			if output.IsJSON() {
				return printComputeJSON(output, f, columns, duration)
			}
			printComputeTable(cmd, output, f, columns, source, duration)
			return nil
		},
	}

	computeCmd.Flags().String("csv", "", "load candles from a CSV file")
	computeCmd.Flags().String("symbol", "", "load candles from the database")
	computeCmd.Flags().String("timeframe", "", "candle timeframe (default from config)")
	computeCmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	computeCmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	computeCmd.Flags().Int("limit", 10, "rows to display (0 = all)")
	computeCmd.Flags().String("save", "", "save the resulting frame to a CSV file")
	computeCmd.Flags().Bool("save-db", false, "save computed columns to the database (requires --symbol)")

	rootCmd.AddCommand(computeCmd)
}

// loadCandles reads candles from the source selected by the --csv or
// --symbol flag.
func loadCandles(ctx context.Context, cmd *cobra.Command, app *App) ([]models.Candle, string, error) {
	csvPath, _ := cmd.Flags().GetString("csv")
	symbol, _ := cmd.Flags().GetString("symbol")

	if csvPath != "" && symbol != "" {
		return nil, "", fmt.Errorf("--csv and --symbol are mutually exclusive")
	}

	if csvPath != "" {
		candles, err := store.LoadCandlesCSV(csvPath)
		if err != nil {
			return nil, "", err
		}
		return candles, csvPath, nil
	}

	if symbol == "" {
		return nil, "", fmt.Errorf("either --csv or --symbol is required")
	}
	if app.Store == nil {
		return nil, "", fmt.Errorf("store not initialized")
	}

	timeframe := resolveTimeframe(cmd, app)
	from, to, err := parseDateRange(cmd)
	if err != nil {
		return nil, "", err
	}

	candles, err := app.Store.GetCandles(ctx, symbol, timeframe, from, to)
	if err != nil {
		return nil, "", err
	}
	return candles, symbol, nil
}

// resolveTimeframe returns the --timeframe flag or the configured default.
func resolveTimeframe(cmd *cobra.Command, app *App) string {
	timeframe, _ := cmd.Flags().GetString("timeframe")
	if timeframe == "" {
		timeframe = app.Config.Data.DefaultTimeframe
	}
	return timeframe
}

// parseDateRange parses the --from and --to flags. Missing bounds open
// the range at that end.
func parseDateRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	from := time.Unix(0, 0).UTC()
	to := time.Now().UTC()

	if s, _ := cmd.Flags().GetString("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fmt.Errorf("invalid --from date %q: %w", s, err)
		}
		from = parsed
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return from, to, fmt.Errorf("invalid --to date %q: %w", s, err)
		}
		// Include the whole end day
		to = parsed.AddDate(0, 0, 1)
	}
	return from, to, nil
}

// saveColumnsToStore persists the computed columns keyed by symbol and
// timeframe.
func saveColumnsToStore(ctx context.Context, cmd *cobra.Command, app *App, f *frame.Frame, columns []string) error {
	symbol, _ := cmd.Flags().GetString("symbol")
	if symbol == "" {
		return fmt.Errorf("--save-db requires --symbol")
	}
	if app.Store == nil {
		return fmt.Errorf("store not initialized")
	}

	series := make(map[string][]float64, len(columns))
	for _, name := range columns {
		col, err := f.Column(name)
		if err != nil {
			return err
		}
		series[name] = col
	}
	return app.Store.SaveIndicatorColumns(ctx, symbol, resolveTimeframe(cmd, app), f.Index(), series)
}

func printComputeJSON(output *Output, f *frame.Frame, columns []string, duration time.Duration) error {
	series := make(map[string]interface{}, len(columns))
	for _, name := range columns {
		col, err := f.Column(name)
		if err != nil {
			return err
		}
		series[name] = JSONSeries(col)
	}

	payload := map[string]interface{}{
		"rows":        f.RowCount(),
		"columns":     columns,
		"series":      series,
		"duration_ms": duration.Milliseconds(),
	}
	if index := f.Index(); index != nil {
		timestamps := make([]string, len(index))
		for i, t := range index {
			timestamps[i] = t.Format(time.RFC3339)
		}
		payload["timestamps"] = timestamps
	}
	return output.JSON(payload)
}

func printComputeTable(cmd *cobra.Command, output *Output, f *frame.Frame, columns []string, source string, duration time.Duration) {
	limit, _ := cmd.Flags().GetInt("limit")
	rows := f.RowCount()
	first := 0
	if limit > 0 && rows > limit {
		first = rows - limit
	}

	output.Bold("Indicators - %s", source)
	output.Dim("%d rows, computed in %s", rows, FormatDuration(duration))
	output.Println()

	headers := append([]string{"TIMESTAMP", "CLOSE"}, columns...)
	table := NewTable(output, headers...)

	close, _ := f.Column("close")
	index := f.Index()
	cols := make([][]float64, len(columns))
	for i, name := range columns {
		cols[i], _ = f.Column(name)
	}

	for i := first; i < rows; i++ {
		cells := make([]string, 0, len(headers))
		if index != nil {
			cells = append(cells, FormatTimestamp(index[i]))
		} else {
			cells = append(cells, fmt.Sprintf("%d", i))
		}
		cells = append(cells, FormatPrice(close[i]))
		for _, col := range cols {
			cells = append(cells, FormatValue(col[i]))
		}
		table.AddRow(cells...)
	}
	table.Render()

	if first > 0 {
		output.Println()
		output.Dim("Showing last %d of %d rows", rows-first, rows)
	}
}
