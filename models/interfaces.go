package models

import "context"

// MarketSource never fails into the caller: on upstream errors it serves
// the last known value or a zero placeholder.
type MarketSource interface {
	FetchRate(ctx context.Context) Quote
	FetchSeries(ctx context.Context, days int, interval string) []Candle
	FetchIndicator(ctx context.Context, symbol string) float64
}

// NewsSource returns an empty slice when headlines cannot be fetched.
type NewsSource interface {
	FetchHeadlines(ctx context.Context, query, window string) []string
}

type Oracle interface {
	Forecast(ctx context.Context, prompt string) (*Forecast, error)
}
