// Package validator confirms which symbols the market-data provider knows
// and keeps the validated set in a flat-file cache.
package validator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/provider"
	"options-dashboard/pkg/utils"
)

// probeDays is the history window requested to decide whether a symbol has data.
const probeDays = 5

// Jitter returns a pause in [min, max].
type Jitter func(min, max time.Duration) time.Duration

// RandomJitter draws a uniformly distributed pause in [min, max].
func RandomJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// Validator probes symbols one at a time.
type Validator struct {
	fetcher provider.HistoryFetcher
	cfg     config.ValidatorConfig
	sleep   utils.SleepFunc
	jitter  Jitter
	logger  zerolog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithSleeper replaces the context-aware sleep used for backoff and pauses.
func WithSleeper(sleep utils.SleepFunc) Option {
	return func(v *Validator) { v.sleep = sleep }
}

// WithJitter replaces the inter-symbol pause generator.
func WithJitter(j Jitter) Option {
	return func(v *Validator) { v.jitter = j }
}

// New creates a Validator.
func New(fetcher provider.HistoryFetcher, cfg config.ValidatorConfig, logger zerolog.Logger, opts ...Option) *Validator {
	v := &Validator{
		fetcher: fetcher,
		cfg:     cfg,
		sleep:   utils.ContextSleep,
		jitter:  RandomJitter,
		logger:  logger.With().Str("component", "validator").Logger(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns the symbols that have at least one row of recent
// history, in input order, plus a warning per dropped symbol. Only a
// cancelled context produces an error.
func (v *Validator) Validate(ctx context.Context, symbols []string) ([]string, []string, error) {
	var valid, warnings []string

	for _, sym := range symbols {
		ok, err := v.check(ctx, sym)
		if ctx.Err() != nil {
			return valid, warnings, ctx.Err()
		}
		switch {
		case apperrors.Is(err, apperrors.ErrSymbolNotFound):
			warnings = append(warnings, fmt.Sprintf("%s: unknown to provider", sym))
			v.logger.Warn().Str("symbol", sym).Msg("Unknown to provider, dropping symbol")
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: validation failed: %v", sym, err))
			v.logger.Warn().Err(err).Str("symbol", sym).Msg("Symbol validation failed")
		case !ok:
			v.logger.Debug().Str("symbol", sym).Msg("No recent data, dropping symbol")
		default:
			valid = append(valid, sym)
		}

		if err := v.sleep(ctx, v.jitter(v.cfg.PauseMin, v.cfg.PauseMax)); err != nil {
			return valid, warnings, err
		}
	}

	v.logger.Info().Int("candidates", len(symbols)).Int("valid", len(valid)).Msg("Validation complete")
	return valid, warnings, nil
}

func (v *Validator) check(ctx context.Context, symbol string) (bool, error) {
	retry := utils.RetryConfig{
		MaxAttempts:   v.cfg.MaxRetries,
		InitialDelay:  v.cfg.BaseDelay,
		BackoffFactor: v.cfg.BackoffFactor,
		ShouldRetry:   apperrors.IsRateLimited,
		Sleep: func(ctx context.Context, d time.Duration) error {
			v.logger.Debug().Str("symbol", symbol).Dur("delay", d).Msg("Rate limited, backing off")
			return v.sleep(ctx, d)
		},
	}

	candles, err := utils.RetryWithResult(ctx, retry, func() (int, error) {
		rows, err := v.fetcher.FetchHistory(ctx, symbol, probeDays)
		return len(rows), err
	})
	if err != nil {
		return false, err
	}
	return candles > 0, nil
}
