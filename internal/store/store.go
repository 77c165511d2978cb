// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"taframe/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol, timeframe string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol, timeframe string, from, to time.Time) ([]models.Candle, error)
	ListSymbols(ctx context.Context) ([]SymbolInfo, error)

	// Computed indicator columns, aligned to candle timestamps
	SaveIndicatorColumns(ctx context.Context, symbol, timeframe string, index []time.Time, columns map[string][]float64) error
	GetIndicatorColumns(ctx context.Context, symbol, timeframe string, index []time.Time) (map[string][]float64, error)

	// Lifecycle
	Close() error
}

// SymbolInfo summarizes the stored candles for one symbol and timeframe.
type SymbolInfo struct {
	Symbol    string
	Timeframe string
	Rows      int
	From      time.Time
	To        time.Time
}
