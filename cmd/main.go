package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/fxanalyst/internal/app"
	"github.com/Alias1177/fxanalyst/internal/config"
	"github.com/Alias1177/fxanalyst/internal/dashboard"
)

func main() {
	forecast := flag.Bool("forecast", false, "request a new forecast after grading")
	history := flag.Bool("history", false, "print the recent prediction log")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		config.SetupLogging("info")
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			log.Fatal().Strs("keys", missing.Keys).Msg("Missing credentials")
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	config.SetupLogging(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, closer, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer closer.Close()

	view, err := svc.Refresh(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Refresh failed")
	}

	if *forecast {
		out, err := svc.Forecast(ctx)
		switch {
		case errors.Is(err, dashboard.ErrForecastUnavailable):
			fmt.Fprintln(os.Stderr, "Forecast unavailable, nothing recorded:", err)
		case err != nil:
			log.Error().Err(err).Msg("Forecast failed")
		default:
			view = out.View
			fmt.Print(dashboard.FormatForecast(out))
			fmt.Println()
		}
	}

	fmt.Print(dashboard.FormatView(view))

	if *history {
		fmt.Println()
		fmt.Print(dashboard.FormatHistory(view.Recent))
	}
}

