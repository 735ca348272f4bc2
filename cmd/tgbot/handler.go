package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Alias1177/fxanalyst/internal/dashboard"
)

const welcomeText = `FX AI-Analyst
/status  current rate, win rate and news
/forecast  grade due predictions and ask for a new call
/history  the latest predictions`

type cycle interface {
	Refresh(ctx context.Context) (*dashboard.View, error)
	Forecast(ctx context.Context) (*dashboard.ForecastOutcome, error)
}

type handler struct {
	cycle  cycle
	logger zerolog.Logger
}

// respond maps a bot command onto the reply text.
func (h *handler) respond(ctx context.Context, command string) string {
	switch command {
	case "start", "help":
		return welcomeText

	case "status":
		v, err := h.cycle.Refresh(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Refresh failed")
			return "Sorry, the prediction log is unavailable right now."
		}
		return dashboard.FormatView(v)

	case "history":
		v, err := h.cycle.Refresh(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("Refresh failed")
			return "Sorry, the prediction log is unavailable right now."
		}
		return dashboard.FormatHistory(v.Recent)

	case "forecast":
		out, err := h.cycle.Forecast(ctx)
		switch {
		case errors.Is(err, dashboard.ErrForecastUnavailable):
			h.logger.Warn().Err(err).Msg("Forecast unavailable")
			return "The forecast service is unavailable, nothing was recorded. Try again later."
		case errors.Is(err, dashboard.ErrNoRate):
			return "No current rate is available, nothing was recorded."
		case err != nil:
			h.logger.Error().Err(err).Msg("Forecast failed")
			return "Sorry, there was an error. Please try again later."
		}
		return dashboard.FormatForecast(out) + "\n" + dashboard.FormatView(out.View)

	default:
		return "Unknown command.\n\n" + welcomeText
	}
}
