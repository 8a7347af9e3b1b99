package provider

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
)

const nseProvider = "nse"

// NSEClient talks to the NSE JSON API for the F&O listing and option chains.
// NSE rejects API calls without the cookies set by its home page, so the
// client keeps priming the cookie jar until one attempt succeeds.
type NSEClient struct {
	http       *resty.Client
	baseURL    string
	listingURL string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger

	primeMu sync.Mutex
	primed  bool
}

// NewNSEClient creates a new NSE client.
func NewNSEClient(cfg config.ProviderConfig, listingURL string, limiter *rate.Limiter, logger zerolog.Logger) *NSEClient {
	failures := uint32(cfg.BreakerFailures)
	if failures == 0 {
		failures = 5
	}

	log := logger.With().Str("provider", nseProvider).Logger()
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        nseProvider,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})

	return &NSEClient{
		http:       newHTTPClient(cfg).SetHeader("Referer", strings.TrimRight(cfg.NSEBaseURL, "/")+"/option-chain"),
		baseURL:    strings.TrimRight(cfg.NSEBaseURL, "/"),
		listingURL: listingURL,
		limiter:    limiter,
		breaker:    breaker,
		logger:     log,
	}
}

// listingResponse is the equity index document; the first row is the index itself.
type listingResponse struct {
	Data []struct {
		Symbol   string `json:"symbol"`
		Priority int    `json:"priority"`
	} `json:"data"`
}

// FetchListing returns the symbols of the configured listing endpoint.
func (n *NSEClient) FetchListing(ctx context.Context) ([]string, error) {
	var listing listingResponse
	if err := n.getJSON(ctx, "listing", n.listingURL, nil, &listing); err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(listing.Data))
	for _, row := range listing.Data {
		if row.Priority == 1 {
			continue
		}
		symbols = append(symbols, row.Symbol)
	}
	return symbols, nil
}

// FetchChainPayload returns the equity option chain for symbol.
func (n *NSEClient) FetchChainPayload(ctx context.Context, symbol string) (*ChainPayload, error) {
	var payload ChainPayload
	params := map[string]string{"symbol": symbol}
	if err := n.getJSON(ctx, "option-chain", n.baseURL+"/api/option-chain-equities", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (n *NSEClient) getJSON(ctx context.Context, endpoint, url string, params map[string]string, out interface{}) error {
	n.prime(ctx)

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.do(ctx, endpoint, url, params, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = apperrors.NewProviderError(nseProvider, endpoint, 0, apperrors.ErrCircuitOpen)
	}
	logging.LogFetch(n.logger, nseProvider, endpoint, time.Since(start), err)
	return err
}

func (n *NSEClient) do(ctx context.Context, endpoint, url string, params map[string]string, out interface{}) error {
	req := n.http.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(url)
	if err != nil {
		return apperrors.NewProviderError(nseProvider, endpoint, 0, err)
	}
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		return apperrors.NewProviderError(nseProvider, endpoint, status, nil)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return apperrors.NewProviderError(nseProvider, endpoint, resp.StatusCode(), err)
	}
	return nil
}

// prime loads the home page so the cookie jar holds a session. It is retried
// on every call until one attempt succeeds.
func (n *NSEClient) prime(ctx context.Context) {
	n.primeMu.Lock()
	defer n.primeMu.Unlock()
	if n.primed {
		return
	}

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return
		}
	}

	resp, err := n.http.R().SetContext(ctx).SetHeader("Accept", "text/html").Get(n.baseURL)
	if err != nil {
		n.logger.Debug().Err(err).Msg("Cookie priming failed")
		return
	}
	if resp.IsError() {
		n.logger.Debug().Int("status", resp.StatusCode()).Msg("Cookie priming rejected")
		return
	}
	n.primed = true
}
