// Package options derives option trade suggestions from breakout rows.
package options

import (
	"github.com/shopspring/decimal"

	"options-dashboard/internal/models"
)

var (
	strikeStep = decimal.NewFromInt(50)

	// Prices below this get weekly contracts.
	weeklyThreshold = decimal.NewFromInt(1000)

	callStop = decimal.RequireFromString("0.98")
	putStop  = decimal.RequireFromString("1.02")
)

// Strike rounds price to the nearest multiple of 50. Exact midpoints go to
// the even multiple, so 1025 becomes 1000 and 1075 becomes 1100.
func Strike(price float64) float64 {
	p := decimal.NewFromFloat(price)
	s, _ := p.Div(strikeStep).RoundBank(0).Mul(strikeStep).Float64()
	return s
}

// Direction is CALL when the signal has any "Above" condition, else PUT.
func Direction(row models.BreakoutRow) models.OptionDirection {
	if row.IsBullish() {
		return models.DirectionCall
	}
	return models.DirectionPut
}

// StopLoss is 2% against the direction, rounded to two decimals.
func StopLoss(price float64, dir models.OptionDirection) float64 {
	factor := putStop
	if dir == models.DirectionCall {
		factor = callStop
	}
	sl, _ := decimal.NewFromFloat(price).Mul(factor).Round(2).Float64()
	return sl
}

// Expiry picks the contract bucket by price.
func Expiry(price float64) models.ExpiryBucket {
	if decimal.NewFromFloat(price).LessThan(weeklyThreshold) {
		return models.ExpiryWeekly
	}
	return models.ExpiryMonthly
}

// Suggest derives the suggestion for one row.
func Suggest(row models.BreakoutRow) models.OptionSuggestion {
	dir := Direction(row)
	return models.OptionSuggestion{
		Symbol:    row.Symbol,
		Price:     row.Price,
		Strike:    Strike(row.Price),
		Direction: dir,
		StopLoss:  StopLoss(row.Price, dir),
		Expiry:    Expiry(row.Price),
		Signal:    row.Signal,
	}
}

// SuggestAll maps Suggest over rows, preserving order.
func SuggestAll(rows []models.BreakoutRow) []models.OptionSuggestion {
	out := make([]models.OptionSuggestion, len(rows))
	for i, r := range rows {
		out[i] = Suggest(r)
	}
	return out
}
