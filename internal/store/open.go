package store

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/fxanalyst/internal/config"
	"github.com/Alias1177/fxanalyst/internal/database"
	"github.com/Alias1177/fxanalyst/internal/ledger"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the ledger backend selected by LEDGER_BACKEND. The closer
// releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config) (ledger.Store, io.Closer, error) {
	switch cfg.LedgerBackend {
	case config.BackendMemory:
		log.Info().Msg("Using in-memory ledger; predictions are lost on restart")
		return NewMemory(), nopCloser{}, nil

	case config.BackendFile:
		log.Info().Str("path", cfg.LedgerFile).Msg("Using file ledger")
		return NewFile(cfg.LedgerFile, cfg.Location), nopCloser{}, nil

	case config.BackendPostgres:
		db, err := database.New(ctx, database.ConnectionParams{
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DBName:   cfg.DB.DBName,
			SSLMode:  cfg.DB.SSLMode,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		log.Info().Str("host", cfg.DB.Host).Str("db", cfg.DB.DBName).Msg("Using PostgreSQL ledger")
		return database.NewLedgerStore(db, cfg.Location), db, nil
	}

	return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}
