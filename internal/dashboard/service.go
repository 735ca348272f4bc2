// Package dashboard runs one refresh or forecast cycle over the ledger.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/internal/analyze"
	"github.com/Alias1177/fxanalyst/internal/calculate"
	"github.com/Alias1177/fxanalyst/internal/ledger"
	"github.com/Alias1177/fxanalyst/models"
)

const (
	DailyDays      = 60
	DailyInterval  = "1day"
	HourlyDays     = 5
	HourlyInterval = "1h"

	DefaultRecentLimit = 10
)

var (
	// ErrForecastUnavailable wraps oracle failures. The ledger is untouched when it is returned.
	ErrForecastUnavailable = errors.New("forecast unavailable")
	// ErrNoRate is returned by Forecast when no positive rate is known.
	ErrNoRate = errors.New("current rate unavailable")
)

// Options wires the collaborators of a Service
type Options struct {
	Market models.MarketSource
	News   models.NewsSource
	Oracle models.Oracle
	Store  ledger.Store

	Symbol           string
	YieldSymbol      string
	VolatilitySymbol string
	NewsQuery        string
	NewsWindow       string

	Policy      ledger.Policy
	Location    *time.Location
	RecentLimit int
	Now         func() time.Time
}

// View is everything a host renders after a cycle
type View struct {
	At         time.Time                `json:"at"`
	Quote      models.Quote             `json:"quote"`
	Daily      []models.Candle          `json:"daily"`
	Hourly     []models.Candle          `json:"hourly"`
	Yield      float64                  `json:"yield"`
	Volatility float64                  `json:"volatility"`
	Indicators calculate.Indicators     `json:"indicators"`
	Headlines  []string                 `json:"headlines"`
	Stats      ledger.Stats             `json:"stats"`
	Recent     []models.PredictionEntry `json:"recent"`
	Graded     ledger.GradeResult       `json:"graded"`
}

// ForecastOutcome is the result of a successful forecast cycle
type ForecastOutcome struct {
	Entry    models.PredictionEntry `json:"entry"`
	Forecast models.Forecast        `json:"forecast"`
	View     *View                  `json:"view"`
}

// Service serialises cycles within one process.
type Service struct {
	opts   Options
	mu     sync.Mutex
	logger zerolog.Logger
}

func NewService(opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy.MaturityWindow <= 0 {
		opts.Policy = ledger.DefaultPolicy()
	}

	return &Service{
		opts:   opts,
		logger: log.With().Str("component", "dashboard").Logger(),
	}
}

// Refresh fetches the market snapshot, grades matured entries and aggregates.
// Only store failures are returned.
func (s *Service) Refresh(ctx context.Context) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (*View, error) {
	now := s.opts.Now().In(s.opts.Location)

	v := &View{At: now}
	v.Quote = s.opts.Market.FetchRate(ctx)
	v.Daily = s.opts.Market.FetchSeries(ctx, DailyDays, DailyInterval)
	v.Hourly = s.opts.Market.FetchSeries(ctx, HourlyDays, HourlyInterval)
	v.Yield = s.opts.Market.FetchIndicator(ctx, s.opts.YieldSymbol)
	v.Volatility = s.opts.Market.FetchIndicator(ctx, s.opts.VolatilitySymbol)
	v.Indicators = calculate.CalculateIndicators(v.Daily)

	var snapshot *ledger.Ledger
	err := s.opts.Store.Update(ctx, func(l *ledger.Ledger) (bool, error) {
		v.Graded = ledger.Grade(l, v.Quote.Rate, now, s.opts.Policy)
		snapshot = l.Clone()
		return v.Graded.Changed(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("grading ledger: %w", err)
	}

	if v.Graded.Skipped {
		s.logger.Warn().Str("rate", v.Quote.Rate.String()).Msg("No usable rate, grading skipped")
	} else if v.Graded.Changed() {
		s.logger.Info().Int("settled", v.Graded.Settled).Int("wins", v.Graded.Wins).
			Int("losses", v.Graded.Losses).Msg("Predictions graded")
	}

	v.Stats = ledger.ComputeStats(snapshot)
	v.Recent = snapshot.Recent(s.opts.RecentLimit)
	v.Headlines = s.opts.News.FetchHeadlines(ctx, s.opts.NewsQuery, s.opts.NewsWindow)

	return v, nil
}

// Forecast grades first, then asks the oracle and appends a Pending entry.
// Nothing is written when the oracle fails.
func (s *Service) Forecast(ctx context.Context) (*ForecastOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.refresh(ctx)
	if err != nil {
		return nil, err
	}
	if v.Quote.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, ErrNoRate
	}

	prompt := analyze.BuildPrompt(analyze.PromptInput{
		Now:        v.At,
		Symbol:     s.opts.Symbol,
		Rate:       v.Quote.Rate,
		Yield:      v.Yield,
		Volatility: v.Volatility,
		Indicators: v.Indicators,
		Headlines:  v.Headlines,
		Horizon:    s.opts.Policy.MaturityWindow,
	})

	fc, err := s.opts.Oracle.Forecast(ctx, prompt)
	if err != nil {
		s.logger.Error().Err(err).Msg("Oracle failed, nothing recorded")
		return nil, fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
	}

	entry := models.PredictionEntry{
		ID:            uuid.New(),
		Timestamp:     s.opts.Now().In(s.opts.Location),
		ReferenceRate: v.Quote.Rate,
		Direction:     fc.Direction,
		Status:        models.StatusPending,
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidEntry, err)
	}

	var snapshot *ledger.Ledger
	err = s.opts.Store.Update(ctx, func(l *ledger.Ledger) (bool, error) {
		if err := l.Append(entry); err != nil {
			return false, err
		}
		snapshot = l.Clone()
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("recording forecast: %w", err)
	}

	s.logger.Info().Str("direction", string(entry.Direction)).Str("rate", entry.ReferenceRate.String()).
		Str("model", fc.Model).Msg("Forecast recorded")

	v.Stats = ledger.ComputeStats(snapshot)
	v.Recent = snapshot.Recent(s.opts.RecentLimit)

	return &ForecastOutcome{Entry: entry, Forecast: *fc, View: v}, nil
}

// Reset clears the ledger.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.opts.Store.Write(ctx, &ledger.Ledger{}); err != nil {
		return fmt.Errorf("resetting ledger: %w", err)
	}
	s.logger.Info().Msg("Ledger reset")
	return nil
}
