// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"taframe/internal/backtest"
	"taframe/internal/frame"
	"taframe/internal/logging"
	"taframe/internal/models"
)

// addBacktestCommands adds the backtest command.
func addBacktestCommands(rootCmd *cobra.Command, app *App) {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run a strategy backtest over a candle series",
		Long: `Run a built-in strategy over a candle series and report the results.

The strategy's indicator columns are computed automatically. The account
holds at most one position at a time, going long on buy signals and flat
on sell signals. Any open position is closed at the last candle.

Available strategies: sma_crossover, stoch_reversal, trend_threshold.

Examples:
  taframe backtest --csv candles.csv
  taframe backtest --symbol RELIANCE --strategy trend_threshold --window 20
  taframe backtest --csv candles.csv --strategy sma_crossover --fast 5 --slow 15`,
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

			strategy, err := buildStrategy(cmd)
			if err != nil {
				output.Error("Failed to build strategy: %v", err)
				return err
			}

			cfg, err := backtestConfig(cmd)
			if err != nil {
				return err
			}

			engine := backtest.New(app.Engine, cfg)
			result, err := engine.Run(ctx, frame.FromCandles(candles), strategy)
			if err != nil {
				output.Error("Backtest failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			printBacktestResult(cmd, output, result, source, cfg)
			return nil
		},
	}

	defaults := app.Config.Backtest
	backtestCmd.Flags().String("csv", "", "load candles from a CSV file")
	backtestCmd.Flags().String("symbol", "", "load candles from the database")
	backtestCmd.Flags().String("timeframe", "", "candle timeframe (default from config)")
	backtestCmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	backtestCmd.Flags().String("to", "", "end date (YYYY-MM-DD)")

	backtestCmd.Flags().String("strategy", "sma_crossover", "strategy name")
	backtestCmd.Flags().Int("fast", 10, "fast window (sma_crossover)")
	backtestCmd.Flags().Int("slow", 20, "slow window (sma_crossover)")
	backtestCmd.Flags().Int("window", 0, "indicator window (trend_threshold, stoch_reversal)")
	backtestCmd.Flags().Float64("enter", 0, "entry slope threshold (trend_threshold)")
	backtestCmd.Flags().Float64("exit", 0, "exit slope threshold (trend_threshold)")
	backtestCmd.Flags().Float64("oversold", 20, "oversold level (stoch_reversal)")
	backtestCmd.Flags().Float64("overbought", 80, "overbought level (stoch_reversal)")

	backtestCmd.Flags().Float64("funds", defaults.InitialFunds, "initial account funds")
	backtestCmd.Flags().Float64("min-amount", defaults.MinOrderAmount, "minimum order amount")
	backtestCmd.Flags().Float64("size", defaults.SizeFraction, "fraction of funds per buy (0,1]")
	backtestCmd.Flags().Int("start", 0, "first row eligible for signals")
	backtestCmd.Flags().Bool("replenish", false, "top funds back up to the initial amount after each close")
	backtestCmd.Flags().Int("orders", 10, "orders to display (0 = all)")

	rootCmd.AddCommand(backtestCmd)
}

// buildStrategy assembles the selected built-in strategy from flags.
func buildStrategy(cmd *cobra.Command) (backtest.Strategy, error) {
	name, _ := cmd.Flags().GetString("strategy")
	fast, _ := cmd.Flags().GetInt("fast")
	slow, _ := cmd.Flags().GetInt("slow")
	window, _ := cmd.Flags().GetInt("window")
	enter, _ := cmd.Flags().GetFloat64("enter")
	exit, _ := cmd.Flags().GetFloat64("exit")
	oversold, _ := cmd.Flags().GetFloat64("oversold")
	overbought, _ := cmd.Flags().GetFloat64("overbought")

	return backtest.Builtin(name, backtest.StrategyOptions{
		Fast:       fast,
		Slow:       slow,
		Window:     window,
		Enter:      enter,
		Exit:       exit,
		Oversold:   oversold,
		Overbought: overbought,
	})
}

// backtestConfig assembles the engine configuration from flags.
func backtestConfig(cmd *cobra.Command) (backtest.Config, error) {
	funds, _ := cmd.Flags().GetFloat64("funds")
	minAmount, _ := cmd.Flags().GetFloat64("min-amount")
	size, _ := cmd.Flags().GetFloat64("size")
	start, _ := cmd.Flags().GetInt("start")
	replenish, _ := cmd.Flags().GetBool("replenish")

	return backtest.Config{
		InitialFunds:   funds,
		MinOrderAmount: minAmount,
		SizeFraction:   size,
		Start:          start,
		Replenish:      replenish,
	}, nil
}

func printBacktestResult(cmd *cobra.Command, output *Output, result *backtest.Result, source string, cfg backtest.Config) {
	output.Bold("Backtest - %s on %s", result.Strategy, source)
	output.Println()

	output.Bold("Performance")
	output.Printf("  Initial Funds:   %.2f\n", cfg.InitialFunds)
	output.Printf("  Total Return:    %s\n", output.FormatSigned(result.Metrics.TotalReturn))
	output.Printf("  Max Drawdown:    %.2f%%\n", result.Metrics.MaxDrawdown)
	output.Printf("  Trades:          %d\n", result.Metrics.Trades)
	output.Printf("  Win Rate:        %.1f%%\n", result.Metrics.WinRate)
	output.Printf("  Wins / Losses:   %d / %d\n", result.Metrics.WinningTrades, result.Metrics.LosingTrades)
	if result.Metrics.RejectedOrders > 0 {
		output.Printf("  Rejected Orders: %d\n", result.Metrics.RejectedOrders)
	}
	output.Println()

	printOrders(cmd, output, result.Orders)

	curve := backtest.EquityCurveASCII(result, 60, 10)
	if curve != "" {
		output.Println()
		output.Println(curve)
	}
}

func printOrders(cmd *cobra.Command, output *Output, orders []models.Order) {
	if len(orders) == 0 {
		output.Dim("No orders placed")
		return
	}

	limit, _ := cmd.Flags().GetInt("orders")
	first := 0
	if limit > 0 && len(orders) > limit {
		first = len(orders) - limit
	}

	output.Bold("Orders")
	table := NewTable(output, "ROW", "SIDE", "STATUS", "PRICE", "QUANTITY", "AMOUNT")
	for _, o := range orders[first:] {
		table.AddRow(
			strconv.Itoa(o.Index),
			orderSide(output, o.Side),
			orderStatus(output, o.Status),
			FormatPrice(o.Price),
			FormatValue(o.Quantity),
			FormatPrice(o.Amount),
		)
	}
	table.Render()

	if first > 0 {
		output.Dim("Showing last %d of %d orders", len(orders)-first, len(orders))
	}
}

func orderSide(output *Output, side models.Side) string {
	if side == models.SideBuy {
		return output.Green(string(side))
	}
	return output.Red(string(side))
}

func orderStatus(output *Output, status models.OrderStatus) string {
	switch status {
	case models.OrderFilled:
		return output.Green(string(status))
	case models.OrderRejected:
		return output.Red(string(status))
	case models.OrderCancelled:
		return output.Yellow(string(status))
	default:
		return string(status)
	}
}
