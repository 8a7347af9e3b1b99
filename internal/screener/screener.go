// Package screener computes breakout signals from trailing daily history.
package screener

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"options-dashboard/internal/analysis/indicators"
	"options-dashboard/internal/config"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/internal/provider"
)

// DefaultTopN is the number of rows kept by TopBreakouts when n <= 0.
const DefaultTopN = 10

// Evaluate computes the breakout row for a snapshot. ok is false when there
// are fewer than two candles; the symbol is then skipped, not failed.
func Evaluate(snapshot models.PriceSnapshot, span int) (models.BreakoutRow, bool) {
	if !snapshot.HasHistory() {
		return models.BreakoutRow{}, false
	}

	ema, err := indicators.EMALast(snapshot.Closes(), span)
	if err != nil {
		return models.BreakoutRow{}, false
	}

	latest := snapshot.Latest()
	prev := snapshot.Previous()
	price := latest.Close

	var signals []models.Signal
	if price > ema {
		signals = append(signals, models.SignalAboveEMA)
	}
	if price > prev.High {
		signals = append(signals, models.SignalAboveYesterdayHigh)
	}
	if price < prev.Low {
		signals = append(signals, models.SignalBelowYesterdayLow)
	}

	return models.BreakoutRow{
		Symbol:   snapshot.Symbol,
		Price:    price,
		EMA20:    ema,
		PrevHigh: prev.High,
		PrevLow:  prev.Low,
		Signal:   models.JoinSignals(signals),
		Signals:  signals,
	}, true
}

// TopBreakouts keeps rows with a signal, orders them by price descending
// (ties keep input order) and truncates to n.
func TopBreakouts(rows []models.BreakoutRow, n int) []models.BreakoutRow {
	if n <= 0 {
		n = DefaultTopN
	}

	out := make([]models.BreakoutRow, 0, len(rows))
	for _, r := range rows {
		if r.HasSignal() {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price > out[j].Price
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Result is the outcome of one screening pass.
type Result struct {
	Rows     []models.BreakoutRow
	Scanned  int
	Skipped  int
	Warnings []string
}

// Screener fetches history for each symbol sequentially and evaluates it.
type Screener struct {
	fetcher provider.HistoryFetcher
	cfg     config.ScreenerConfig
	logger  zerolog.Logger
}

// New creates a Screener.
func New(fetcher provider.HistoryFetcher, cfg config.ScreenerConfig, logger zerolog.Logger) *Screener {
	return &Screener{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With().Str("component", "screener").Logger(),
	}
}

// Run screens symbols in order. Provider failures become warnings and the
// symbol is excluded; only a cancelled context is returned as an error.
func (s *Screener) Run(ctx context.Context, symbols []string) (Result, error) {
	var res Result

	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		candles, err := s.fetcher.FetchHistory(ctx, sym, s.cfg.HistoryDays)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: history unavailable: %v", sym, err))
			s.logger.Warn().Err(err).Str("symbol", sym).Msg("History fetch failed")
			continue
		}
		res.Scanned++

		row, ok := Evaluate(models.PriceSnapshot{Symbol: sym, Candles: candles}, s.cfg.EMASpan)
		if !ok {
			res.Skipped++
			s.logger.Debug().Str("symbol", sym).Int("candles", len(candles)).Msg("Not enough history, skipping")
			continue
		}
		if row.HasSignal() {
			logging.LogSignal(s.logger, row.Symbol, row.Signal, row.Price, row.EMA20)
		}
		res.Rows = append(res.Rows, row)
	}

	return res, nil
}
