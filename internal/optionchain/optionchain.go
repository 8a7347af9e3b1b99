// Package optionchain reshapes a live option chain payload into flat rows.
package optionchain

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/provider"
)

// Viewer fetches and flattens option chains for one symbol at a time.
type Viewer struct {
	fetcher provider.ChainFetcher
	now     func() time.Time
	logger  zerolog.Logger
}

// NewViewer creates a Viewer.
func NewViewer(fetcher provider.ChainFetcher, logger zerolog.Logger) *Viewer {
	return &Viewer{
		fetcher: fetcher,
		now:     time.Now,
		logger:  logger.With().Str("component", "optionchain").Logger(),
	}
}

// Chain fetches the chain for symbol and flattens it.
func (v *Viewer) Chain(ctx context.Context, symbol string) (models.OptionChain, error) {
	payload, err := v.fetcher.FetchChainPayload(ctx, symbol)
	if err != nil {
		return models.OptionChain{}, apperrors.Wrapf(err, "option chain for %s", symbol)
	}

	chain := Flatten(symbol, payload)
	chain.FetchedAt = v.now()
	if len(chain.Rows) == 0 {
		return chain, apperrors.NewDataError("option_chain", symbol, "no strikes with both sides", apperrors.ErrNoData)
	}

	v.logger.Debug().
		Str("symbol", symbol).
		Str("expiry", chain.Expiry).
		Int("strikes", len(chain.Rows)).
		Msg("Option chain loaded")
	return chain, nil
}

// Flatten converts a payload into one row per strike that has both a call
// and a put. When the payload lists expiries only the nearest one is kept.
// Rows are sorted by strike.
func Flatten(symbol string, payload *provider.ChainPayload) models.OptionChain {
	chain := models.OptionChain{Symbol: symbol}
	if payload == nil {
		return chain
	}

	rec := payload.Records
	chain.Underlying = rec.UnderlyingValue
	chain.Timestamp = rec.Timestamp
	if len(rec.ExpiryDates) > 0 {
		chain.Expiry = rec.ExpiryDates[0]
	}

	for _, r := range rec.Data {
		if r.CE == nil || r.PE == nil {
			continue
		}
		if chain.Expiry != "" && r.ExpiryDate != "" && r.ExpiryDate != chain.Expiry {
			continue
		}

		strike := r.StrikePrice
		if strike == 0 {
			strike = r.CE.StrikePrice
		}
		chain.Rows = append(chain.Rows, models.OptionChainRow{
			Strike:    strike,
			CallPrice: r.CE.LastPrice,
			CallOI:    r.CE.OpenInterest,
			PutPrice:  r.PE.LastPrice,
			PutOI:     r.PE.OpenInterest,
		})
	}

	sort.SliceStable(chain.Rows, func(i, j int) bool {
		return chain.Rows[i].Strike < chain.Rows[j].Strike
	})
	return chain
}

// ATMIndex returns the index of the row whose strike is closest to the
// underlying, or -1 for an empty chain.
func ATMIndex(chain models.OptionChain) int {
	best := -1
	bestDiff := math.Inf(1)
	for i, r := range chain.Rows {
		if d := math.Abs(r.Strike - chain.Underlying); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Window keeps n strikes on each side of the at-the-money strike. n <= 0 or
// an unknown underlying returns the chain unchanged.
func Window(chain models.OptionChain, n int) models.OptionChain {
	if n <= 0 || chain.Underlying <= 0 || len(chain.Rows) == 0 {
		return chain
	}

	atm := ATMIndex(chain)
	lo := atm - n
	if lo < 0 {
		lo = 0
	}
	hi := atm + n + 1
	if hi > len(chain.Rows) {
		hi = len(chain.Rows)
	}

	out := chain
	out.Rows = append([]models.OptionChainRow(nil), chain.Rows[lo:hi]...)
	return out
}
