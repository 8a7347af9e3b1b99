package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/models"
)

const yahooProvider = "yahoo"

// YahooClient implements HistoryFetcher using the Yahoo Finance chart API.
type YahooClient struct {
	http    *resty.Client
	baseURL string
	suffix  string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewYahooClient creates a new Yahoo Finance client. suffix is appended to
// every symbol (".NS" for NSE listings).
func NewYahooClient(cfg config.ProviderConfig, suffix string, limiter *rate.Limiter, logger zerolog.Logger) *YahooClient {
	return &YahooClient{
		http:    newHTTPClient(cfg),
		baseURL: strings.TrimRight(cfg.HistoryURL, "/"),
		suffix:  suffix,
		limiter: limiter,
		logger:  logger,
	}
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange picks the smallest chart range covering days trading days.
func yahooRange(days int) string {
	switch {
	case days <= 1:
		return "1d"
	case days <= 5:
		return "5d"
	case days <= 20:
		return "1mo"
	case days <= 60:
		return "3mo"
	case days <= 120:
		return "6mo"
	case days <= 250:
		return "1y"
	default:
		return "2y"
	}
}

// FetchHistory returns up to days daily candles, oldest first.
func (y *YahooClient) FetchHistory(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	ticker := symbol + y.suffix
	endpoint := fmt.Sprintf("%s/%s", y.baseURL, url.PathEscape(ticker))

	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	candles, err := y.fetch(ctx, symbol, endpoint, days)
	logging.LogFetch(logging.WithSymbol(y.logger, symbol), yahooProvider, "chart", time.Since(start), err)
	return candles, err
}

func (y *YahooClient) fetch(ctx context.Context, symbol, endpoint string, days int) ([]models.Candle, error) {
	resp, err := y.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    yahooRange(days),
		}).
		Get(endpoint)
	if err != nil {
		return nil, apperrors.NewProviderError(yahooProvider, "chart", 0, err)
	}

	switch status := resp.StatusCode(); {
	case status < 200 || status >= 300:
		// 429 maps to ErrRateLimited, 404 (unknown ticker) to ErrSymbolNotFound.
		return nil, apperrors.NewProviderError(yahooProvider, "chart", status, nil)
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, apperrors.NewDataError("history", symbol, "decoding chart response", err)
	}
	if chart.Chart.Error != nil {
		return nil, apperrors.NewDataError("history", symbol, chart.Chart.Error.Description, apperrors.ErrNoData)
	}

	return parseChart(chart, days), nil
}

func parseChart(chart yahooChart, days int) []models.Candle {
	if len(chart.Chart.Result) == 0 {
		return nil
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c, ok := at(quote.Close, i)
		if !ok {
			continue // null bars (holidays, halted sessions)
		}
		o, _ := at(quote.Open, i)
		h, _ := at(quote.High, i)
		l, _ := at(quote.Low, i)
		v, _ := at(quote.Volume, i)
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    int64(v),
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })

	if days > 0 && len(candles) > days {
		candles = candles[len(candles)-days:]
	}
	return candles
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
