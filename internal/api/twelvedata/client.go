package twelvedata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpClient "github.com/Alias1177/fxanalyst/internal/platform/http"
	"github.com/Alias1177/fxanalyst/models"
)

const (
	DefaultBaseURL = "https://api.twelvedata.com"

	// daily history used for the headline rate and the daily indicators
	RateSeriesDays     = 60
	RateSeriesInterval = "1day"
)

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	symbol     string
	precision  int32
	cacheTTL   time.Duration
	httpClient *httpClient.Client
	logger     zerolog.Logger
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSeries
}

type cachedSeries struct {
	candles   []models.Candle
	fetchedAt time.Time
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	Symbol          string
	RatePrecision   int32
	CacheTTL        time.Duration
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
		Component:       "twelvedata_http",
	}

	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.Symbol == "" {
		options.Symbol = "USD/JPY"
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    options.BaseURL,
		symbol:     options.Symbol,
		precision:  options.RatePrecision,
		cacheTTL:   options.CacheTTL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
		now:        time.Now,
		cache:      make(map[string]cachedSeries),
	}
}

// FetchRate returns the latest daily close of the configured symbol.
// On failure the last known close is returned with Stale set; with no
// history at all the rate is zero.
func (c *Client) FetchRate(ctx context.Context) models.Quote {
	candles, stale := c.series(ctx, c.symbol, RateSeriesInterval, models.CalculateCandlesForPeriod(RateSeriesInterval, RateSeriesDays))

	q := models.Quote{Symbol: c.symbol, At: c.now(), Stale: stale}
	if len(candles) == 0 {
		q.Stale = true
		return q
	}

	q.Rate = decimal.NewFromFloat(candles[len(candles)-1].Close).Round(c.precision)
	return q
}

// FetchSeries returns bars covering the last days, oldest first.
func (c *Client) FetchSeries(ctx context.Context, days int, interval string) []models.Candle {
	candles, _ := c.series(ctx, c.symbol, interval, models.CalculateCandlesForPeriod(interval, days))
	return candles
}

// FetchIndicator returns the last daily close of an auxiliary symbol, 0 when unavailable.
func (c *Client) FetchIndicator(ctx context.Context, symbol string) float64 {
	candles, _ := c.series(ctx, symbol, RateSeriesInterval, 1)
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

func (c *Client) series(ctx context.Context, symbol, interval string, count int) ([]models.Candle, bool) {
	key := symbol + "|" + interval + "|" + strconv.Itoa(count)

	c.mu.Lock()
	cached, ok := c.cache[key]
	c.mu.Unlock()

	if ok && c.cacheTTL > 0 && c.now().Sub(cached.fetchedAt) < c.cacheTTL {
		return cached.candles, false
	}

	candles, err := c.GetCandles(ctx, symbol, interval, count)
	if err != nil {
		if ok {
			c.logger.Warn().Err(err).Str("symbol", symbol).Str("interval", interval).
				Time("last_fetch", cached.fetchedAt).Msg("Serving last known candles")
			return cached.candles, true
		}
		c.logger.Warn().Err(err).Str("symbol", symbol).Str("interval", interval).Msg("No candles available")
		return []models.Candle{}, true
	}

	c.mu.Lock()
	c.cache[key] = cachedSeries{candles: candles, fetchedAt: c.now()}
	c.mu.Unlock()

	return candles, false
}

// GetCandles fetches candle data from Twelve Data API
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", strconv.Itoa(count))
	params.Set("apikey", c.apiKey)

	endpoint := c.baseURL + "/time_series?" + params.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data models.TwelveResponse
	if err := sonic.ConfigStd.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Str("response", string(body)).Msg("Twelve Data API error")
		return nil, fmt.Errorf("Twelve Data API error: %s", data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("response", string(body)).Msg("No candles in response")
		return nil, fmt.Errorf("empty data returned")
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		candles = append(candles, models.Candle{
			Datetime: v.Datetime,
			Open:     v.Open,
			High:     v.High,
			Low:      v.Low,
			Close:    v.Close,
			Volume:   v.Volume,
		})
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}
