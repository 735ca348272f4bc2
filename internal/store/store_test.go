package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/fxanalyst/internal/config"
	"github.com/Alias1177/fxanalyst/internal/ledger"
	"github.com/Alias1177/fxanalyst/models"
)

var tokyo = time.FixedZone("JST", 9*3600)

func pendingAt(ts time.Time, rate string, d models.Direction) models.PredictionEntry {
	return models.PredictionEntry{
		ID:            uuid.New(),
		Timestamp:     ts,
		ReferenceRate: decimal.RequireFromString(rate),
		Direction:     d,
		Status:        models.StatusPending,
	}
}

func backends(t *testing.T) map[string]ledger.Store {
	return map[string]ledger.Store{
		"memory": NewMemory(),
		"file":   NewFile(filepath.Join(t.TempDir(), "nested", "ledger.yaml"), tokyo),
	}
}

func TestStoresStartEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			l, err := s.Read(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, l.Len())
		})
	}
}

func TestStoresUpdateAndGrade(t *testing.T) {
	issued := time.Date(2026, 1, 8, 9, 0, 0, 0, tokyo)

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
				return true, l.Append(pendingAt(issued, "150.000", models.DirectionBuy))
			}))

			var result ledger.GradeResult
			require.NoError(t, s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
				result = ledger.Grade(l, decimal.RequireFromString("150.500"), issued.Add(25*time.Hour), ledger.DefaultPolicy())
				return result.Changed(), nil
			}))
			assert.Equal(t, 1, result.Wins)

			l, err := s.Read(ctx)
			require.NoError(t, err)
			require.Equal(t, 1, l.Len())
			e := l.Entries[0]
			assert.Equal(t, models.StatusWin, e.Status)
			assert.True(t, e.SettlementRate.Decimal.Equal(decimal.RequireFromString("150.5")))
			assert.True(t, e.Timestamp.Equal(issued))
		})
	}
}

func TestStoresUpdateErrorWritesNothing(t *testing.T) {
	boom := errors.New("boom")

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
				_ = l.Append(pendingAt(time.Now(), "150", models.DirectionSell))
				return true, boom
			})
			assert.ErrorIs(t, err, boom)

			l, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, l.Len())
		})
	}
}

func TestStoresWriteResets(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Update(ctx, func(l *ledger.Ledger) (bool, error) {
				return true, l.Append(pendingAt(time.Now(), "150", models.DirectionHold))
			}))
			require.NoError(t, s.Write(ctx, &ledger.Ledger{}))

			l, err := s.Read(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, l.Len())
		})
	}
}

func TestMemoryReadReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Update(ctx, func(l *ledger.Ledger) (bool, error) {
		return true, l.Append(pendingAt(time.Now(), "150", models.DirectionBuy))
	}))

	l, err := m.Read(ctx)
	require.NoError(t, err)
	l.Entries[0].Status = models.StatusLoss

	again, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Entries[0].Status)
}

func TestFileReadsSheetRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	doc := `predictions:
  - time: "2026-01-08 09:00:00"
    rate: "150.000"
    pred: SELL
    status: Pending
    final_rate: ""
  - time: "2026-01-08 10:00:00"
    rate: "150.200"
    pred: BUY
    status: win
    final_rate: "150.900"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	l, err := NewFile(path, tokyo).Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, l.Len())
	assert.True(t, l.Entries[0].Timestamp.Equal(time.Date(2026, 1, 8, 9, 0, 0, 0, tokyo)))
	assert.Equal(t, models.StatusWin, l.Entries[1].Status)
}

func TestFileRejectsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	doc := `predictions:
  - time: "yesterday"
    rate: "150.000"
    pred: SELL
    status: Pending
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := NewFile(path, tokyo).Read(context.Background())
	assert.ErrorIs(t, err, ledger.ErrInvalidRecord)
}

func TestOpenSelectsBackend(t *testing.T) {
	tests := []struct {
		backend  string
		expected any
	}{
		{backend: config.BackendMemory, expected: &Memory{}},
		{backend: config.BackendFile, expected: &File{}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := &config.Config{
				LedgerBackend: tt.backend,
				LedgerFile:    filepath.Join(t.TempDir(), "ledger.yaml"),
				Location:      tokyo,
			}
			s, closer, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			require.NotNil(t, closer)
			assert.IsType(t, tt.expected, s)
			assert.NoError(t, closer.Close())
		})
	}

	_, _, err := Open(context.Background(), &config.Config{LedgerBackend: "sheets"})
	assert.Error(t, err)
}
