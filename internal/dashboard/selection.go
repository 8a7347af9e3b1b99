package dashboard

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"options-dashboard/internal/symbols"
)

// ChainSelector switches the option chain view.
type ChainSelector interface {
	SelectChain(symbol string)
}

// hideChain clears the selection when typed on its own.
const hideChain = "-"

// WatchSelection reads one symbol per line from in and selects it for the
// option chain view from the next cycle on. A "-" line hides the view;
// blank lines are ignored. It returns when in is exhausted or ctx is done.
func WatchSelection(ctx context.Context, in io.Reader, sel ChainSelector, logger zerolog.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				continue
			case line == hideChain:
				sel.SelectChain("")
				logger.Info().Msg("Option chain hidden")
			default:
				sym := symbols.Normalize(line)
				if sym == "" {
					logger.Warn().Str("input", line).Msg("Ignoring invalid chain symbol")
					continue
				}
				sel.SelectChain(sym)
				logger.Info().Str("symbol", sym).Msg("Option chain selected")
			}
		}
	}
}
