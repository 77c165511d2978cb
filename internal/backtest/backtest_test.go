package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taframe/internal/errors"
	"taframe/internal/frame"
	"taframe/internal/indicators"
	"taframe/internal/models"
)

// scriptedStrategy replays a fixed signal per row.
type scriptedStrategy struct {
	signals []Signal
}

func (s scriptedStrategy) Name() string {
	return "scripted"
}

func (s scriptedStrategy) Columns() []string {
	return nil
}

func (s scriptedStrategy) Next(row RowView) Signal {
	if row.Index < len(s.signals) {
		return s.signals[row.Index]
	}
	return Hold
}

func priceFrame(closes []float64) *frame.Frame {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return frame.FromCandles(candles)
}

func testEngine(cfg Config) *Engine {
	return New(indicators.NewEngine(indicators.NewDefaultRegistry(), 1), cfg)
}

func TestRunBuyThenSell(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000})
	strat := scriptedStrategy{signals: []Signal{Buy, Hold, Hold, Sell}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 12, 15, 20}), strat)
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	buy, sell := result.Orders[0], result.Orders[1]

	assert.Equal(t, models.SideBuy, buy.Side)
	assert.Equal(t, models.OrderFilled, buy.Status)
	assert.InDelta(t, 1000, buy.Amount, 1e-9)
	assert.InDelta(t, 100, buy.Quantity, 1e-9)

	assert.Equal(t, models.SideSell, sell.Side)
	assert.Equal(t, models.OrderFilled, sell.Status)
	assert.InDelta(t, 2000, sell.Amount, 1e-9)

	assert.Equal(t, 1, result.Metrics.Trades)
	assert.Equal(t, 1, result.Metrics.WinningTrades)
	assert.InDelta(t, 100, result.Metrics.TotalReturn, 1e-9)
	assert.InDelta(t, 100, result.Metrics.WinRate, 1e-9)
}

func TestRunClosesOpenPositionAtEnd(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000})
	strat := scriptedStrategy{signals: []Signal{Buy, Hold, Hold}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 10, 8}), strat)
	require.NoError(t, err)

	require.Len(t, result.Orders, 2)
	assert.Equal(t, models.SideSell, result.Orders[1].Side)
	assert.Equal(t, 2, result.Orders[1].Index)
	assert.Equal(t, 1, result.Metrics.LosingTrades)
	assert.InDelta(t, -20, result.Metrics.TotalReturn, 1e-9)
}

func TestRunRejectsOrdersBelowMinimum(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 100, MinOrderAmount: 500})
	strat := scriptedStrategy{signals: []Signal{Buy}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 11}), strat)
	require.NoError(t, err)

	require.Len(t, result.Orders, 1)
	assert.Equal(t, models.OrderRejected, result.Orders[0].Status)
	assert.Equal(t, 1, result.Metrics.RejectedOrders)
	assert.Zero(t, result.Metrics.Trades)
}

func TestRunSinglePositionConstraint(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000})
	strat := scriptedStrategy{signals: []Signal{Buy, Buy, Sell, Sell}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 10, 10, 10}), strat)
	require.NoError(t, err)

	require.Len(t, result.Orders, 4)
	assert.Equal(t, models.OrderFilled, result.Orders[0].Status)
	assert.Equal(t, models.OrderCancelled, result.Orders[1].Status)
	assert.Equal(t, models.OrderFilled, result.Orders[2].Status)
	assert.Equal(t, models.OrderCancelled, result.Orders[3].Status)
}

func TestRunSizeFraction(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000, SizeFraction: 0.5})
	strat := scriptedStrategy{signals: []Signal{Buy}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 10}), strat)
	require.NoError(t, err)

	require.NotEmpty(t, result.Orders)
	assert.InDelta(t, 500, result.Orders[0].Amount, 1e-9)
}

func TestRunReplenishTopsUpAfterLoss(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000, Replenish: true})
	strat := scriptedStrategy{signals: []Signal{Buy, Sell, Buy, Sell}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 5, 10, 10}), strat)
	require.NoError(t, err)

	// First trade halves the funds; replenish restores them, so the
	// second buy commits the full initial amount again.
	require.Len(t, result.Orders, 4)
	assert.InDelta(t, 1000, result.Orders[2].Amount, 1e-9)
}

func TestRunStartOffsetSuppressesEarlySignals(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000, Start: 2})
	strat := scriptedStrategy{signals: []Signal{Buy, Buy, Buy}}

	result, err := engine.Run(context.Background(), priceFrame([]float64{10, 10, 10}), strat)
	require.NoError(t, err)

	require.NotEmpty(t, result.Orders)
	assert.Equal(t, 2, result.Orders[0].Index)
}

func TestRunComputesStrategyColumns(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000})
	f := priceFrame(seqPrices(30))

	_, err := engine.Run(context.Background(), f, SMACrossover{Fast: 3, Slow: 5})
	require.NoError(t, err)

	assert.True(t, f.Has("sma_3"))
	assert.True(t, f.Has("sma_5"))
}

func TestRunValidatesConfig(t *testing.T) {
	strat := scriptedStrategy{}

	_, err := testEngine(Config{}).Run(context.Background(), priceFrame([]float64{10}), strat)
	var btErr *apperrors.BacktestError
	assert.ErrorAs(t, err, &btErr)

	_, err = testEngine(Config{InitialFunds: 1000, Start: 5}).
		Run(context.Background(), priceFrame([]float64{10, 10}), strat)
	assert.ErrorAs(t, err, &btErr)
}

func TestRunEquitySeriesLengthMatchesRows(t *testing.T) {
	engine := testEngine(Config{InitialFunds: 1000})
	prices := seqPrices(15)

	result, err := engine.Run(context.Background(), priceFrame(prices), scriptedStrategy{})
	require.NoError(t, err)

	require.Len(t, result.FundsOverTime, 15)
	for i, equity := range result.FundsOverTime {
		assert.InDelta(t, 1000, equity, 1e-9, "no orders placed, equity should stay flat at row %d", i)
	}
}

func TestBuiltinStrategies(t *testing.T) {
	for _, name := range StrategyNames() {
		strat, err := Builtin(name, StrategyOptions{})
		require.NoError(t, err, "strategy %s", name)
		assert.Equal(t, name, strat.Name())
		assert.NotEmpty(t, strat.Columns())
	}

	_, err := Builtin("martingale", StrategyOptions{})
	assert.Error(t, err)
}

func TestEquityCurveASCII(t *testing.T) {
	result := &Result{FundsOverTime: []float64{1000, 1100, 1050, 1200}}

	curve := EquityCurveASCII(result, 20, 5)
	assert.Contains(t, curve, "Equity Curve")
	assert.Contains(t, curve, "█")

	assert.Equal(t, "No data to display", EquityCurveASCII(&Result{}, 20, 5))
}

func seqPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return prices
}
