package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/fxanalyst/internal/platform/http"
)

const DefaultBaseURL = "https://news.google.com/rss/search"

// Client reads headlines from the Google News RSS search feed
type Client struct {
	baseURL    string
	language   string
	region     string
	limit      int
	httpClient *httpClient.Client
	parser     *gofeed.Parser
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a news client
type ClientOptions struct {
	BaseURL        string
	Language       string // hl
	Region         string // gl
	Limit          int
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int
}

// NewClient creates a news client
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = "ja"
	}
	if opts.Region == "" {
		opts.Region = "JP"
	}
	if opts.Limit <= 0 {
		opts.Limit = 8
	}

	return &Client{
		baseURL:  opts.BaseURL,
		language: opts.Language,
		region:   opts.Region,
		limit:    opts.Limit,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        opts.RequestTimeout,
			RequestsPerSec: opts.RequestsPerSec,
			MaxRetries:     opts.MaxRetries,
			Component:      "news_http",
		}),
		parser: gofeed.NewParser(),
		logger: log.With().Str("component", "news_client").Logger(),
	}
}

// FetchHeadlines returns up to the configured number of titles matching
// query within window (e.g. "1d"). Failures yield an empty slice.
func (c *Client) FetchHeadlines(ctx context.Context, query, window string) []string {
	headlines, err := c.fetch(ctx, query, window)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("Headlines unavailable")
		return []string{}
	}
	return headlines
}

func (c *Client) fetch(ctx context.Context, query, window string) ([]string, error) {
	q := strings.TrimSpace(query)
	if window != "" {
		q += " when:" + window
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("hl", c.language)
	params.Set("gl", c.region)
	params.Set("ceid", c.region+":"+c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	headlines := make([]string, 0, c.limit)
	for _, item := range feed.Items {
		if len(headlines) == c.limit {
			break
		}
		if title := strings.TrimSpace(item.Title); title != "" {
			headlines = append(headlines, title)
		}
	}

	c.logger.Debug().Int("count", len(headlines)).Msg("Fetched headlines")
	return headlines, nil
}
