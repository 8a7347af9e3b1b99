package models

import "strings"

// Signal is one breakout condition label.
type Signal string

const (
	SignalAboveEMA           Signal = "Above 20EMA"
	SignalAboveYesterdayHigh Signal = "Above Yesterday High"
	SignalBelowYesterdayLow  Signal = "Below Yesterday Low"
)

// SignalSeparator joins co-occurring labels in a BreakoutRow's Signal.
const SignalSeparator = " | "

// BreakoutRow is the screener output for one symbol in one refresh cycle.
type BreakoutRow struct {
	Symbol   string   `json:"symbol"`
	Price    float64  `json:"price"`
	EMA20    float64  `json:"ema20"`
	PrevHigh float64  `json:"prev_high"`
	PrevLow  float64  `json:"prev_low"`
	Signal   string   `json:"signal"`
	Signals  []Signal `json:"signals,omitempty"`
}

// JoinSignals builds the display label from the individual conditions.
func JoinSignals(signals []Signal) string {
	parts := make([]string, len(signals))
	for i, s := range signals {
		parts[i] = string(s)
	}
	return strings.Join(parts, SignalSeparator)
}

// HasSignal reports whether any breakout condition fired.
func (r BreakoutRow) HasSignal() bool {
	return r.Signal != ""
}

// IsBullish reports whether the signal mentions an "Above" condition.
func (r BreakoutRow) IsBullish() bool {
	return strings.Contains(r.Signal, "Above")
}

// IsBearish reports whether the signal mentions a "Below" condition.
func (r BreakoutRow) IsBearish() bool {
	return strings.Contains(r.Signal, "Below")
}
