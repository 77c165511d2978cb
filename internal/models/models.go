// Package models provides domain models shared across the application.
package models

import (
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Side represents the side of a simulated order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderStatus represents the lifecycle state of a simulated order.
type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderFilled    OrderStatus = "FILLED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Order is a simulated order produced by a backtest run.
// Index is the row of the input series at which the order was placed.
type Order struct {
	Index    int
	Side     Side
	Status   OrderStatus
	Amount   float64
	Price    float64
	Quantity float64
}
