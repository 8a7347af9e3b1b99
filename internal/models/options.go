package models

import "time"

// OptionDirection is the side of a suggested option trade.
type OptionDirection string

const (
	DirectionCall OptionDirection = "CALL"
	DirectionPut  OptionDirection = "PUT"
)

// ExpiryBucket is the suggested contract expiry.
type ExpiryBucket string

const (
	ExpiryWeekly  ExpiryBucket = "Weekly (Intraday)"
	ExpiryMonthly ExpiryBucket = "Monthly"
)

// OptionSuggestion is derived purely from a BreakoutRow.
type OptionSuggestion struct {
	Symbol    string          `json:"symbol"`
	Price     float64         `json:"price"`
	Strike    float64         `json:"strike"`
	Direction OptionDirection `json:"direction"`
	StopLoss  float64         `json:"stop_loss"`
	Expiry    ExpiryBucket    `json:"expiry"`
	Signal    string          `json:"signal"`
}

// OptionChainRow is one strike with both a call and a put quote.
type OptionChainRow struct {
	Strike    float64 `json:"strike"`
	CallPrice float64 `json:"call_price"`
	CallOI    float64 `json:"call_oi"`
	PutPrice  float64 `json:"put_price"`
	PutOI     float64 `json:"put_oi"`
}

// OptionChain is a point-in-time option chain for one underlying.
type OptionChain struct {
	Symbol     string           `json:"symbol"`
	Underlying float64          `json:"underlying"`
	Timestamp  string           `json:"timestamp,omitempty"`
	Expiry     string           `json:"expiry,omitempty"`
	FetchedAt  time.Time        `json:"fetched_at"`
	Rows       []OptionChainRow `json:"rows"`
}
