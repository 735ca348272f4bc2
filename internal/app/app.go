// Package app wires configuration into a ready dashboard service for the hosts.
package app

import (
	"context"
	"io"
	"time"

	"github.com/Alias1177/fxanalyst/internal/api/gemini"
	"github.com/Alias1177/fxanalyst/internal/api/twelvedata"
	"github.com/Alias1177/fxanalyst/internal/config"
	"github.com/Alias1177/fxanalyst/internal/dashboard"
	"github.com/Alias1177/fxanalyst/internal/news"
	"github.com/Alias1177/fxanalyst/internal/store"
)

// Build constructs the collaborators and the service. The closer releases
// the ledger backend.
func Build(ctx context.Context, cfg *config.Config) (*dashboard.Service, io.Closer, error) {
	ledgerStore, closer, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second

	market := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:          cfg.TwelveAPIKey,
		Symbol:          cfg.Symbol,
		RatePrecision:   cfg.RatePrecision,
		CacheTTL:        cfg.MarketCacheTTL,
		RequestTimeout:  timeout,
		RequestsPerSec:  cfg.RequestsPerSec,
		MaxRetries:      3,
		MaxRetryTimeout: timeout,
	})

	headlines := news.NewClient(news.ClientOptions{
		Language:       cfg.NewsLanguage,
		Region:         cfg.NewsRegion,
		Limit:          cfg.NewsLimit,
		RequestTimeout: timeout,
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     2,
	})

	oracle := gemini.NewClient(gemini.ClientOptions{
		APIKey:  cfg.OracleKey(),
		BaseURL: cfg.OracleBaseURL,
		Models:  cfg.OracleModels,
		Timeout: 2 * timeout,
	})

	svc := dashboard.NewService(dashboard.Options{
		Market:           market,
		News:             headlines,
		Oracle:           oracle,
		Store:            ledgerStore,
		Symbol:           cfg.Symbol,
		YieldSymbol:      cfg.YieldSymbol,
		VolatilitySymbol: cfg.VolatilitySymbol,
		NewsQuery:        cfg.NewsQuery,
		NewsWindow:       cfg.NewsWindow,
		Policy:           cfg.Policy(),
		Location:         cfg.Location,
	})

	return svc, closer, nil
}
