// Package backtest simulates trading strategies over candle frames with
// computed indicator columns.
package backtest

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperrors "taframe/internal/errors"
	"taframe/internal/frame"
	"taframe/internal/indicators"
	"taframe/internal/logging"
	"taframe/internal/models"
)

// Signal is a strategy's per-row decision.
type Signal int

const (
	Hold Signal = iota
	Buy
	Sell
)

// RowView exposes one frame row to a strategy.
type RowView struct {
	Index int
	f     *frame.Frame
}

// Value returns the named column at the current row, or NaN when the
// column is absent.
func (r RowView) Value(column string) float64 {
	return r.at(column, r.Index)
}

// Lookback returns the named column k rows back, or NaN when that row
// does not exist.
func (r RowView) Lookback(column string, k int) float64 {
	return r.at(column, r.Index-k)
}

func (r RowView) at(column string, i int) float64 {
	if i < 0 || i >= r.f.RowCount() {
		return math.NaN()
	}
	series, err := r.f.Column(column)
	if err != nil {
		return math.NaN()
	}
	return series[i]
}

// Strategy produces signals row by row. Columns names the indicator
// columns the strategy reads; the engine computes any that are missing
// before the run starts.
type Strategy interface {
	Name() string
	Columns() []string
	Next(row RowView) Signal
}

// Config holds backtest parameters.
type Config struct {
	InitialFunds   float64
	MinOrderAmount float64
	SizeFraction   float64
	Start          int
	Replenish      bool
}

// Engine runs strategies over candle frames.
type Engine struct {
	indicators *indicators.Engine
	config     Config
}

// New creates a backtest engine. A non-positive SizeFraction means
// all-in sizing.
func New(ind *indicators.Engine, cfg Config) *Engine {
	if cfg.SizeFraction <= 0 || cfg.SizeFraction > 1 {
		cfg.SizeFraction = 1
	}
	return &Engine{indicators: ind, config: cfg}
}

// Metrics summarizes a backtest run. TotalReturn and MaxDrawdown are
// percentages of initial funds and peak equity respectively.
type Metrics struct {
	TotalReturn    float64
	MaxDrawdown    float64
	WinRate        float64
	Trades         int
	WinningTrades  int
	LosingTrades   int
	RejectedOrders int
}

// Result is the outcome of one backtest run. FundsOverTime holds the
// mark-to-market equity per input row.
type Result struct {
	Strategy      string
	Orders        []models.Order
	FundsOverTime []float64
	Metrics       Metrics
}

// runState holds the state during a backtest run.
type runState struct {
	funds       float64
	quantity    float64
	entryPrice  float64
	lastPrice   float64
	peakEquity  float64
	maxDrawdown float64
	wins        int
	losses      int
}

// Run simulates the strategy over the frame. Strategy columns missing
// from the frame are computed and attached first, so the caller's frame
// carries them afterwards.
func (e *Engine) Run(ctx context.Context, f *frame.Frame, strat Strategy) (*Result, error) {
	if e.config.InitialFunds <= 0 {
		return nil, apperrors.NewBacktestError(strat.Name(), "initial funds must be positive", nil)
	}
	rows := f.RowCount()
	if rows == 0 {
		return nil, apperrors.NewBacktestError(strat.Name(), "empty frame", apperrors.ErrNoData)
	}
	if e.config.Start < 0 || e.config.Start >= rows {
		return nil, apperrors.NewBacktestError(strat.Name(),
			fmt.Sprintf("start index %d outside 0..%d", e.config.Start, rows-1), nil)
	}

	var missing []string
	for _, col := range strat.Columns() {
		if !f.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		if err := f.Apply(ctx, e.indicators, missing...); err != nil {
			return nil, apperrors.NewBacktestError(strat.Name(), "computing strategy columns", err)
		}
	}

	close, err := f.Column(indicators.ColumnClose)
	if err != nil {
		return nil, apperrors.NewBacktestError(strat.Name(), "close column required", err)
	}

	state := &runState{
		funds:      e.config.InitialFunds,
		lastPrice:  math.NaN(),
		peakEquity: e.config.InitialFunds,
	}
	result := &Result{
		Strategy:      strat.Name(),
		FundsOverTime: make([]float64, rows),
	}

	for i := 0; i < rows; i++ {
		price := close[i]
		if !math.IsNaN(price) && price > 0 {
			state.lastPrice = price
			if i >= e.config.Start {
				e.processSignal(state, result, strat.Next(RowView{Index: i, f: f}), i, price)
			}
		}

		// Mark to market at the last defined price
		equity := state.funds
		if state.quantity > 0 && !math.IsNaN(state.lastPrice) {
			equity += state.quantity * state.lastPrice
		}
		result.FundsOverTime[i] = equity

		// Track drawdown
		if equity > state.peakEquity {
			state.peakEquity = equity
		}
		if state.peakEquity > 0 {
			drawdown := (state.peakEquity - equity) / state.peakEquity
			if drawdown > state.maxDrawdown {
				state.maxDrawdown = drawdown
			}
		}
	}

	// Close any open position at the end
	if state.quantity > 0 {
		e.closePosition(state, result, rows-1, state.lastPrice)
	}

	calculateMetrics(result, state, e.config.InitialFunds)
	logging.LogBacktest(logging.FromContext(ctx), strat.Name(),
		result.Metrics.Trades, result.Metrics.TotalReturn)
	return result, nil
}

// processSignal turns one signal into an order, applying the minimum
// amount rule and the single-position constraint.
func (e *Engine) processSignal(state *runState, result *Result, signal Signal, index int, price float64) {
	switch signal {
	case Buy:
		if state.quantity > 0 {
			result.Orders = append(result.Orders, models.Order{
				Index:  index,
				Side:   models.SideBuy,
				Status: models.OrderCancelled,
				Price:  price,
			})
			return
		}
		amount := state.funds * e.config.SizeFraction
		if amount < e.config.MinOrderAmount {
			result.Orders = append(result.Orders, models.Order{
				Index:  index,
				Side:   models.SideBuy,
				Status: models.OrderRejected,
				Amount: amount,
				Price:  price,
			})
			return
		}
		quantity := amount / price
		state.funds -= amount
		state.quantity = quantity
		state.entryPrice = price
		result.Orders = append(result.Orders, models.Order{
			Index:    index,
			Side:     models.SideBuy,
			Status:   models.OrderFilled,
			Amount:   amount,
			Price:    price,
			Quantity: quantity,
		})

	case Sell:
		if state.quantity == 0 {
			result.Orders = append(result.Orders, models.Order{
				Index:  index,
				Side:   models.SideSell,
				Status: models.OrderCancelled,
				Price:  price,
			})
			return
		}
		e.closePosition(state, result, index, price)
	}
}

// closePosition sells the whole position at price and applies the
// replenish rule.
func (e *Engine) closePosition(state *runState, result *Result, index int, price float64) {
	if state.quantity == 0 || math.IsNaN(price) {
		return
	}
	proceeds := state.quantity * price
	if price > state.entryPrice {
		state.wins++
	} else {
		state.losses++
	}
	result.Orders = append(result.Orders, models.Order{
		Index:    index,
		Side:     models.SideSell,
		Status:   models.OrderFilled,
		Amount:   proceeds,
		Price:    price,
		Quantity: state.quantity,
	})

	state.funds += proceeds
	state.quantity = 0
	state.entryPrice = 0
	if e.config.Replenish && state.funds < e.config.InitialFunds {
		state.funds = e.config.InitialFunds
	}
}

// calculateMetrics fills the result metrics from the final run state.
func calculateMetrics(result *Result, state *runState, initialFunds float64) {
	m := &result.Metrics
	m.Trades = state.wins + state.losses
	m.WinningTrades = state.wins
	m.LosingTrades = state.losses
	for _, order := range result.Orders {
		if order.Status == models.OrderRejected {
			m.RejectedOrders++
		}
	}

	m.TotalReturn = (state.funds - initialFunds) / initialFunds * 100
	m.MaxDrawdown = state.maxDrawdown * 100
	if m.Trades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.Trades) * 100
	}
}

// EquityCurveASCII renders the funds-over-time series as an ASCII chart.
func EquityCurveASCII(result *Result, width, height int) string {
	if len(result.FundsOverTime) == 0 || width < 1 || height < 1 {
		return "No data to display"
	}

	// Find min/max equity
	minEquity := math.Inf(1)
	maxEquity := math.Inf(-1)
	for _, equity := range result.FundsOverTime {
		if math.IsNaN(equity) {
			continue
		}
		if equity < minEquity {
			minEquity = equity
		}
		if equity > maxEquity {
			maxEquity = equity
		}
	}
	if math.IsInf(minEquity, 1) {
		return "No data to display"
	}

	// Add padding
	equityRange := maxEquity - minEquity
	if equityRange == 0 {
		equityRange = 1
	}
	minEquity -= equityRange * 0.05
	maxEquity += equityRange * 0.05
	equityRange = maxEquity - minEquity

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Sample points to fit width
	step := len(result.FundsOverTime) / width
	if step == 0 {
		step = 1
	}
	for x := 0; x < width && x*step < len(result.FundsOverTime); x++ {
		equity := result.FundsOverTime[x*step]
		if math.IsNaN(equity) {
			continue
		}
		y := int((equity - minEquity) / equityRange * float64(height-1))
		if y >= 0 && y < height {
			grid[height-1-y][x] = '█'
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Equity Curve (%.0f - %.0f)\n", minEquity, maxEquity))
	sb.WriteString(strings.Repeat("─", width+2) + "\n")
	for _, row := range grid {
		sb.WriteRune('│')
		sb.WriteString(string(row))
		sb.WriteRune('│')
		sb.WriteRune('\n')
	}
	sb.WriteString(strings.Repeat("─", width+2) + "\n")
	return sb.String()
}
