package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/fxanalyst/internal/app"
	"github.com/Alias1177/fxanalyst/internal/config"
	"github.com/Alias1177/fxanalyst/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.SetupLogging("info")
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			log.Fatal().Strs("keys", missing.Keys).Msg("Missing credentials, refusing to start")
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	config.SetupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closer, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer closer.Close()

	srv := server.NewServer(cfg.HTTPAddr, svc)
	if err := srv.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}
