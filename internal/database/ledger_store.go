package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/internal/ledger"
	"github.com/Alias1177/fxanalyst/models"
)

const selectLedger = `
	SELECT id, time, rate, pred, status, final_rate
	FROM prediction_ledger
	ORDER BY seq`

// LedgerStore keeps the ledger in the prediction_ledger table.
type LedgerStore struct {
	db     *DB
	loc    *time.Location
	logger zerolog.Logger
}

func NewLedgerStore(db *DB, loc *time.Location) *LedgerStore {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerStore{
		db:     db,
		loc:    loc,
		logger: log.With().Str("component", "ledger_store").Logger(),
	}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *LedgerStore) Read(ctx context.Context) (*ledger.Ledger, error) {
	return s.load(ctx, s.db)
}

// Write replaces the whole table with l.
func (s *LedgerStore) Write(ctx context.Context, l *ledger.Ledger) error {
	return s.db.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE prediction_ledger IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("locking ledger: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM prediction_ledger`); err != nil {
			return fmt.Errorf("clearing ledger: %w", err)
		}
		return s.upsert(ctx, tx, l)
	})
}

// Update holds an exclusive lock on the table for the whole read-modify-write,
// so concurrent grading passes from several processes serialise.
func (s *LedgerStore) Update(ctx context.Context, fn func(l *ledger.Ledger) (bool, error)) error {
	return s.db.runInTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE prediction_ledger IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("locking ledger: %w", err)
		}

		l, err := s.load(ctx, tx)
		if err != nil {
			return err
		}

		changed, err := fn(l)
		if err != nil || !changed {
			return err
		}
		return s.upsert(ctx, tx, l)
	})
}

func (s *LedgerStore) load(ctx context.Context, q querier) (*ledger.Ledger, error) {
	rows, err := q.QueryContext(ctx, selectLedger)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.PredictionEntry
	for rows.Next() {
		var (
			e                 models.PredictionEntry
			direction, status string
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ReferenceRate, &direction, &status, &e.SettlementRate); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		e.Timestamp = e.Timestamp.In(s.loc)
		e.Direction = models.Direction(direction)
		e.Status = models.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger rows: %w", err)
	}

	l, err := ledger.New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ledger.ErrInvalidRecord, err)
	}
	return l, nil
}

// upsert inserts new entries in ledger order and updates the mutable
// columns of existing ones.
func (s *LedgerStore) upsert(ctx context.Context, tx *sql.Tx, l *ledger.Ledger) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO prediction_ledger (id, time, rate, pred, status, final_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			final_rate = EXCLUDED.final_rate
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range l.Entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Timestamp, e.ReferenceRate, string(e.Direction), string(e.Status), nullDecimal(e.SettlementRate),
		); err != nil {
			return fmt.Errorf("saving entry %s: %w", e.ID, err)
		}
	}

	s.logger.Debug().Int("entries", l.Len()).Msg("Ledger saved")
	return nil
}

func nullDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal
}
