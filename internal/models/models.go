// Package models provides domain models for the options dashboard.
package models

import (
	"time"
)

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents OHLCV data for one trading day.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// PriceSnapshot is the trailing daily history of one symbol, oldest first.
type PriceSnapshot struct {
	Symbol  string
	Candles []Candle
}

// HasHistory reports whether there are enough candles for a
// today-versus-yesterday comparison.
func (p PriceSnapshot) HasHistory() bool {
	return len(p.Candles) >= 2
}

// Latest returns the most recent candle. The snapshot must not be empty.
func (p PriceSnapshot) Latest() Candle {
	return p.Candles[len(p.Candles)-1]
}

// Previous returns the second-to-last candle. Callers check HasHistory first.
func (p PriceSnapshot) Previous() Candle {
	return p.Candles[len(p.Candles)-2]
}

// Closes returns the closing prices in chronological order.
func (p PriceSnapshot) Closes() []float64 {
	closes := make([]float64, len(p.Candles))
	for i, c := range p.Candles {
		closes[i] = c.Close
	}
	return closes
}
