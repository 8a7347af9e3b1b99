// Package symbols loads and normalizes the ticker universe.
package symbols

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/provider"
)

// Source yields raw, unnormalized symbols.
type Source interface {
	Name() string
	Symbols(ctx context.Context) ([]string, error)
}

// Normalize strips everything outside [A-Za-z0-9] and upper-cases the rest.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeAll normalizes raw symbols, drops empty results and removes
// duplicates, keeping first-seen order.
func NormalizeAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if sym := Normalize(r); sym != "" {
			out = append(out, sym)
		}
	}
	return Dedupe(out)
}

// Dedupe removes repeated symbols, keeping the first occurrence.
func Dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := symbols[:0:0]
	for _, sym := range symbols {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

// FileSource reads symbols from a CSV file with a header row.
type FileSource struct {
	Path   string
	Column string
}

// NewFileSource creates a FileSource for the named column.
func NewFileSource(path, column string) *FileSource {
	return &FileSource{Path: path, Column: column}
}

func (f *FileSource) Name() string { return "file" }

// Symbols returns the values of the symbol column. A missing file or column
// is a SourceError.
func (f *FileSource) Symbols(ctx context.Context) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, apperrors.NewSourceError(f.Name(), f.Path, err)
	}
	defer file.Close()

	symbols, err := readColumn(file, f.Column)
	if err != nil {
		return nil, apperrors.NewSourceError(f.Name(), f.Path, err)
	}
	return symbols, nil
}

func readColumn(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: %w", apperrors.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := -1
	want := strings.ToUpper(strings.TrimSpace(column))
	for i, h := range header {
		// Spreadsheet exports sometimes carry a UTF-8 BOM on the first cell.
		h = strings.TrimPrefix(h, "\ufeff")
		if strings.ToUpper(strings.TrimSpace(h)) == want {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column %q: %w", column, apperrors.ErrMissingColumn)
	}

	var symbols []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if idx < len(row) {
			symbols = append(symbols, row[idx])
		}
	}
	return symbols, nil
}

// RemoteSource reads symbols from the remote listing endpoint.
type RemoteSource struct {
	fetcher provider.ListingFetcher
}

// NewRemoteSource wraps a listing fetcher.
func NewRemoteSource(fetcher provider.ListingFetcher) *RemoteSource {
	return &RemoteSource{fetcher: fetcher}
}

func (r *RemoteSource) Name() string { return "remote" }

func (r *RemoteSource) Symbols(ctx context.Context) ([]string, error) {
	symbols, err := r.fetcher.FetchListing(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching remote listing")
	}
	return symbols, nil
}

// Loader resolves the symbol universe. When a primary source is configured
// it is tried first and any failure degrades to the fallback with a warning;
// a fallback failure is fatal.
type Loader struct {
	primary  Source
	fallback Source
	logger   zerolog.Logger
}

// NewLoader creates a Loader. primary may be nil, in which case the fallback
// is the only source.
func NewLoader(primary, fallback Source, logger zerolog.Logger) *Loader {
	return &Loader{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "symbols").Logger(),
	}
}

// Load returns a non-empty normalized symbol set or an error.
func (l *Loader) Load(ctx context.Context) (models.SymbolLoad, error) {
	if l.primary == nil {
		symbols, err := l.loadFrom(ctx, l.fallback)
		if err != nil {
			return models.SymbolLoad{}, err
		}
		return models.SymbolLoad{Symbols: symbols, Source: l.fallback.Name(), Status: models.SourcePrimary}, nil
	}

	symbols, err := l.loadFrom(ctx, l.primary)
	if err == nil {
		return models.SymbolLoad{Symbols: symbols, Source: l.primary.Name(), Status: models.SourcePrimary}, nil
	}
	if ctx.Err() != nil {
		return models.SymbolLoad{}, ctx.Err()
	}

	warning := fmt.Sprintf("%s symbol source failed, using %s: %v", l.primary.Name(), l.fallback.Name(), err)
	l.logger.Warn().Err(err).Str("fallback", l.fallback.Name()).Msg("Primary symbol source failed")

	symbols, ferr := l.loadFrom(ctx, l.fallback)
	if ferr != nil {
		return models.SymbolLoad{}, ferr
	}
	return models.SymbolLoad{
		Symbols: symbols,
		Source:  l.fallback.Name(),
		Status:  models.SourceFallback,
		Warning: warning,
	}, nil
}

func (l *Loader) loadFrom(ctx context.Context, src Source) ([]string, error) {
	raw, err := src.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	symbols := NormalizeAll(raw)
	if len(symbols) == 0 {
		return nil, apperrors.NewSourceError(src.Name(), "", apperrors.ErrNoData)
	}
	l.logger.Debug().Str("source", src.Name()).Int("raw", len(raw)).Int("symbols", len(symbols)).Msg("Symbols loaded")
	return symbols, nil
}
