package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/fxanalyst/internal/ledger"
	"github.com/Alias1177/fxanalyst/models"
)

func TestConnectionParamsDSN(t *testing.T) {
	p := ConnectionParams{Host: "db", Port: "5432", User: "fx", Password: "pw", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=fx password=pw dbname=ledger sslmode=disable", p.DSN())
}

func TestNullDecimal(t *testing.T) {
	assert.Nil(t, nullDecimal(decimal.NullDecimal{}))
	assert.Equal(t, decimal.RequireFromString("150.5"), nullDecimal(decimal.NewNullDecimal(decimal.RequireFromString("150.5"))))
}

// Runs against a real server when LEDGER_TEST_DSN_HOST is set, e.g. in CI with a postgres service.
func TestLedgerStoreRoundTrip(t *testing.T) {
	host := os.Getenv("LEDGER_TEST_DSN_HOST")
	if host == "" {
		t.Skip("LEDGER_TEST_DSN_HOST not set")
	}

	ctx := context.Background()
	db, err := New(ctx, ConnectionParams{
		Host:     host,
		Port:     "5432",
		User:     "postgres",
		Password: os.Getenv("LEDGER_TEST_DSN_PASSWORD"),
		DBName:   "postgres",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	defer db.Close()

	tokyo := time.FixedZone("JST", 9*3600)
	s := NewLedgerStore(db, tokyo)
	require.NoError(t, s.Write(ctx, &ledger.Ledger{}))

	issued := time.Date(2026, 1, 8, 9, 0, 0, 0, tokyo)
	require.NoError(t, s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
		return true, l.Append(models.PredictionEntry{
			ID:            uuid.New(),
			Timestamp:     issued,
			ReferenceRate: decimal.RequireFromString("150.000"),
			Direction:     models.DirectionSell,
			Status:        models.StatusPending,
		})
	}))

	require.NoError(t, s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
		r := ledger.Grade(l, decimal.RequireFromString("149.200"), issued.Add(24*time.Hour), ledger.DefaultPolicy())
		return r.Changed(), nil
	}))

	l, err := s.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, models.StatusWin, l.Entries[0].Status)
	assert.True(t, l.Entries[0].Timestamp.Equal(issued))
	assert.Equal(t, tokyo, l.Entries[0].Timestamp.Location())

	require.NoError(t, s.Write(ctx, &ledger.Ledger{}))
}
