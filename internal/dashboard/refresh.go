// Package dashboard assembles one refresh cycle and schedules repeated cycles.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
	"options-dashboard/internal/optionchain"
	"options-dashboard/internal/options"
	"options-dashboard/internal/screener"
	"options-dashboard/internal/validator"
	"options-dashboard/pkg/utils"
)

// SymbolLoader yields the candidate universe.
type SymbolLoader interface {
	Load(ctx context.Context) (models.SymbolLoad, error)
}

// SymbolCache returns validated symbols, from disk when fresh.
type SymbolCache interface {
	GetOrValidate(ctx context.Context, candidates []string, ttl time.Duration) (validator.CacheResult, error)
}

// Scanner screens validated symbols.
type Scanner interface {
	Run(ctx context.Context, symbols []string) (screener.Result, error)
}

// ChainViewer fetches an option chain.
type ChainViewer interface {
	Chain(ctx context.Context, symbol string) (models.OptionChain, error)
}

// Options tunes a Refresher.
type Options struct {
	TopN         int
	CacheTTL     time.Duration
	ChainSymbol  string
	ChainStrikes int
}

// Refresher computes a DashboardState from its collaborators. It holds no
// state between cycles other than the selected chain symbol.
type Refresher struct {
	loader  SymbolLoader
	cache   SymbolCache
	scanner Scanner
	chains  ChainViewer
	opts    Options
	now     func() time.Time
	logger  zerolog.Logger

	mu          sync.RWMutex
	chainSymbol string
}

// NewRefresher creates a Refresher. chains may be nil when no chain view is wanted.
func NewRefresher(loader SymbolLoader, cache SymbolCache, scanner Scanner, chains ChainViewer, opts Options, logger zerolog.Logger) *Refresher {
	return &Refresher{
		loader:      loader,
		cache:       cache,
		scanner:     scanner,
		chains:      chains,
		opts:        opts,
		now:         time.Now,
		logger:      logger.With().Str("component", "refresher").Logger(),
		chainSymbol: opts.ChainSymbol,
	}
}

// SelectChain changes the symbol shown in the option chain view. An empty
// symbol hides the view.
func (r *Refresher) SelectChain(symbol string) {
	r.mu.Lock()
	r.chainSymbol = symbol
	r.mu.Unlock()
}

func (r *Refresher) selectedChain() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chainSymbol
}

// Refresh runs Loader, Cache, Screener, options and the optional chain view
// in that order. Loader and cache failures are returned; per-symbol and
// chain failures land in Warnings.
func (r *Refresher) Refresh(ctx context.Context) (models.DashboardState, error) {
	start := r.now()
	state := models.DashboardState{
		GeneratedAt:  start,
		MarketStatus: utils.MarketStatusAt(start),
	}

	load, err := r.loader.Load(ctx)
	if err != nil {
		return state, apperrors.Wrap(err, "loading symbols")
	}
	state.Load = load
	state.Candidates = len(load.Symbols)
	if load.Warning != "" {
		state.Warnings = append(state.Warnings, load.Warning)
	}

	cached, err := r.cache.GetOrValidate(ctx, load.Symbols, r.opts.CacheTTL)
	if err != nil {
		return state, err
	}
	state.Validated = cached.Symbols
	state.CacheHit = cached.Hit
	state.Warnings = append(state.Warnings, cached.Warnings...)

	scan, err := r.scanner.Run(ctx, cached.Symbols)
	if err != nil {
		return state, apperrors.Wrap(err, "screening")
	}
	state.Scanned = scan.Scanned
	state.Warnings = append(state.Warnings, scan.Warnings...)

	state.Breakouts = screener.TopBreakouts(scan.Rows, r.opts.TopN)
	state.Suggestions = options.SuggestAll(state.Breakouts)

	if sym := r.selectedChain(); sym != "" && r.chains != nil {
		chain, err := r.chains.Chain(ctx, sym)
		if err != nil {
			if ctx.Err() != nil {
				return state, ctx.Err()
			}
			state.Warnings = append(state.Warnings, fmt.Sprintf("option chain %s: %v", sym, err))
			r.logger.Warn().Err(err).Str("symbol", sym).Msg("Option chain unavailable")
		} else {
			chain = optionchain.Window(chain, r.opts.ChainStrikes)
			state.Chain = &chain
		}
	}

	state.Duration = r.now().Sub(start)
	logging.LogRefresh(r.logger, state.Candidates, len(state.Validated), len(state.Breakouts), len(state.Warnings), state.CacheHit, state.Duration)
	return state, nil
}
