// Package provider provides market-data provider interfaces and HTTP clients.
package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"options-dashboard/internal/config"
	"options-dashboard/internal/models"
)

// HistoryFetcher returns trailing daily candles for a symbol, oldest first.
// An unknown symbol may yield an empty slice rather than an error.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// ChainFetcher returns the raw option chain payload for a symbol.
type ChainFetcher interface {
	FetchChainPayload(ctx context.Context, symbol string) (*ChainPayload, error)
}

// ListingFetcher returns the raw symbol list of the remote listing endpoint.
type ListingFetcher interface {
	FetchListing(ctx context.Context) ([]string, error)
}

// ChainPayload mirrors the option chain JSON document.
type ChainPayload struct {
	Records ChainRecords `json:"records"`
}

// ChainRecords is the "records" object of a ChainPayload.
type ChainRecords struct {
	ExpiryDates     []string      `json:"expiryDates"`
	Data            []ChainRecord `json:"data"`
	Timestamp       string        `json:"timestamp"`
	UnderlyingValue float64       `json:"underlyingValue"`
}

// ChainRecord is one strike; either side may be absent.
type ChainRecord struct {
	StrikePrice float64    `json:"strikePrice"`
	ExpiryDate  string     `json:"expiryDate"`
	CE          *ChainSide `json:"CE,omitempty"`
	PE          *ChainSide `json:"PE,omitempty"`
}

// ChainSide is the call or put quote of a ChainRecord.
type ChainSide struct {
	StrikePrice  float64 `json:"strikePrice"`
	LastPrice    float64 `json:"lastPrice"`
	OpenInterest float64 `json:"openInterest"`
}

// NewLimiter builds the request pacer shared by all clients of one process.
func NewLimiter(cfg config.ProviderConfig) *rate.Limiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

func newHTTPClient(cfg config.ProviderConfig) *resty.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return client
}
