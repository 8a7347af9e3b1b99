// Package indicators provides technical indicator calculations.
package indicators

import (
	"fmt"

	"options-dashboard/internal/models"
)

// Indicator defines the interface for single-value technical indicators.
type Indicator interface {
	Name() string
	Calculate(candles []models.Candle) ([]float64, error)
	Period() int
}

// EMA calculates an exponentially weighted moving average of closes.
//
// The series is seeded with the first close and updated recursively with
// alpha = 2/(span+1), without bias adjustment, so it is defined from the
// first candle onwards rather than after span candles.
type EMA struct {
	span int
}

// NewEMA creates a new EMA indicator.
func NewEMA(span int) *EMA {
	return &EMA{span: span}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.span)
}

func (e *EMA) Period() int {
	return e.span
}

func (e *EMA) Calculate(candles []models.Candle) ([]float64, error) {
	return EWM(closePrices(candles), e.span)
}

// Alpha returns the smoothing factor for a span.
func Alpha(span int) float64 {
	return 2.0 / float64(span+1)
}

// EWM calculates the recursive exponential moving average of values.
func EWM(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(values) == 0 {
		return nil, ErrInsufficientData
	}

	alpha := Alpha(span)
	result := make([]float64, len(values))
	result[0] = values[0]

	for i := 1; i < len(values); i++ {
		result[i] = alpha*values[i] + (1-alpha)*result[i-1]
	}

	return result, nil
}

// EMALast returns only the final value of EWM.
func EMALast(values []float64, span int) (float64, error) {
	series, err := EWM(values, span)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
