package validator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	apperrors "options-dashboard/internal/errors"
)

// Checker validates candidate symbols.
type Checker interface {
	Validate(ctx context.Context, symbols []string) ([]string, []string, error)
}

// CacheResult is the outcome of GetOrValidate.
type CacheResult struct {
	Symbols  []string
	Hit      bool
	Warnings []string
}

type cacheRow struct {
	Symbol string `csv:"SYMBOL"`
}

// Cache persists the validated symbol set to a single-column CSV file.
// Freshness is the file's modification time compared against a ttl.
type Cache struct {
	path    string
	checker Checker
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCache creates a Cache backed by path.
func NewCache(path string, checker Checker, logger zerolog.Logger) *Cache {
	return &Cache{
		path:    path,
		checker: checker,
		now:     time.Now,
		logger:  logger.With().Str("component", "cache").Str("path", path).Logger(),
	}
}

// Path returns the backing file.
func (c *Cache) Path() string { return c.path }

// GetOrValidate returns the persisted set when it is younger than ttl (0
// means it never expires). Otherwise it validates candidates, persists the
// result and returns it with Hit false.
func (c *Cache) GetOrValidate(ctx context.Context, candidates []string, ttl time.Duration) (CacheResult, error) {
	var warnings []string

	symbols, fresh, err := c.Load(ttl)
	switch {
	case err != nil:
		warnings = append(warnings, fmt.Sprintf("ignoring unreadable symbol cache: %v", err))
		c.logger.Warn().Err(err).Msg("Symbol cache unreadable, revalidating")
	case fresh:
		c.logger.Debug().Int("symbols", len(symbols)).Msg("Symbol cache hit")
		return CacheResult{Symbols: symbols, Hit: true}, nil
	}

	valid, vwarnings, err := c.checker.Validate(ctx, candidates)
	if err != nil {
		return CacheResult{}, apperrors.Wrap(err, "validating symbols")
	}
	warnings = append(warnings, vwarnings...)

	if err := c.Store(valid); err != nil {
		warnings = append(warnings, fmt.Sprintf("symbol cache not saved: %v", err))
		c.logger.Warn().Err(err).Msg("Failed to persist symbol cache")
	}

	return CacheResult{Symbols: valid, Warnings: warnings}, nil
}

// Load reads the persisted set. fresh is false when the file is missing,
// empty or older than ttl.
func (c *Cache) Load(ttl time.Duration) (symbols []string, fresh bool, err error) {
	info, err := os.Stat(c.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if ttl > 0 && c.now().Sub(info.ModTime()) > ttl {
		c.logger.Debug().Time("modified", info.ModTime()).Dur("ttl", ttl).Msg("Symbol cache expired")
		return nil, false, nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	var rows []cacheRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, false, fmt.Errorf("parsing %s: %w", c.path, err)
	}
	for _, r := range rows {
		if r.Symbol != "" {
			symbols = append(symbols, r.Symbol)
		}
	}
	return symbols, len(symbols) > 0, nil
}

// Store overwrites the file with symbols via a temp file and rename.
func (c *Cache) Store(symbols []string) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	rows := make([]*cacheRow, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, &cacheRow{Symbol: s})
	}
	if err := gocsv.Marshal(rows, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding symbol cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

// Invalidate deletes the backing file. A missing file is not an error.
func (c *Cache) Invalidate() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
