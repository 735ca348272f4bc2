package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/fxanalyst/models"
)

func TestFromRecordNormalisesTime(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Time
	}{
		{name: "naive sheet layout", value: "2026-01-10 09:00:00", expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "naive iso layout", value: "2026-01-10T09:00:00", expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "zoned record layout", value: "2026-01-10 09:00:00+09:00", expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 utc", value: "2026-01-10T00:00:00Z", expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 other zone", value: "2026-01-09T19:00:00-05:00", expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := FromRecord(models.LedgerRecord{
				Time: tt.value, Rate: "150.000", Pred: "BUY", Status: "Pending",
			}, tokyo)

			require.NoError(t, err)
			assert.True(t, e.Timestamp.Equal(tt.expected), "got %s", e.Timestamp)
			assert.Equal(t, tokyo, e.Timestamp.Location())
		})
	}
}

func TestFromRecordRejectsMalformed(t *testing.T) {
	valid := models.LedgerRecord{Time: "2026-01-10 09:00:00", Rate: "150.0", Pred: "BUY", Status: "Pending"}

	tests := []struct {
		name   string
		mutate func(r *models.LedgerRecord)
	}{
		{name: "missing time", mutate: func(r *models.LedgerRecord) { r.Time = "" }},
		{name: "garbage time", mutate: func(r *models.LedgerRecord) { r.Time = "yesterday" }},
		{name: "missing rate", mutate: func(r *models.LedgerRecord) { r.Rate = "" }},
		{name: "negative rate", mutate: func(r *models.LedgerRecord) { r.Rate = "-1" }},
		{name: "unknown prediction", mutate: func(r *models.LedgerRecord) { r.Pred = "UP" }},
		{name: "unknown status", mutate: func(r *models.LedgerRecord) { r.Status = "Done" }},
		{name: "settled without final rate", mutate: func(r *models.LedgerRecord) { r.Status = "Win" }},
		{name: "pending with final rate", mutate: func(r *models.LedgerRecord) { r.FinalRate = "151" }},
		{name: "bad final rate", mutate: func(r *models.LedgerRecord) { r.Status = "Loss"; r.FinalRate = "abc" }},
		{name: "bad id", mutate: func(r *models.LedgerRecord) { r.ID = "not-a-uuid" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)

			_, err := FromRecord(rec, tokyo)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestFromRecordAcceptsSheetQuirks(t *testing.T) {
	e, err := FromRecord(models.LedgerRecord{
		Time: "2026-01-10 09:00:00", Rate: " 150.25 ", Pred: "sell", Status: "PENDING", FinalRate: "nan",
	}, tokyo)

	require.NoError(t, err)
	assert.Equal(t, models.DirectionSell, e.Direction)
	assert.Equal(t, models.StatusPending, e.Status)
	assert.False(t, e.SettlementRate.Valid)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", e.ID.String())

	again, err := FromRecord(models.LedgerRecord{
		Time: "2026-01-10 09:00:00", Rate: " 150.25 ", Pred: "sell", Status: "PENDING", FinalRate: "nan",
	}, tokyo)
	require.NoError(t, err)
	assert.Equal(t, e.ID, again.ID)
}

func TestRecordRoundTrip(t *testing.T) {
	issued := time.Date(2026, 1, 10, 9, 0, 0, 0, tokyo)
	l := &Ledger{Entries: []models.PredictionEntry{
		pending(issued, "150.000", models.DirectionBuy),
		pending(issued.Add(time.Hour), "150.250", models.DirectionHold),
	}}
	Grade(l, dec("150.300"), issued.Add(24*time.Hour), DefaultPolicy())

	recs := ToRecords(l)
	require.Len(t, recs, 2)
	assert.Equal(t, "2026-01-10 09:00:00+09:00", recs[0].Time)
	assert.Equal(t, "Win", recs[0].Status)
	assert.Equal(t, "150.3", recs[0].FinalRate)
	assert.Equal(t, "", recs[1].FinalRate)

	back, err := FromRecords(recs, tokyo)
	require.NoError(t, err)
	require.Equal(t, 2, back.Len())
	for i := range l.Entries {
		assert.Equal(t, l.Entries[i].ID, back.Entries[i].ID)
		assert.True(t, l.Entries[i].Timestamp.Equal(back.Entries[i].Timestamp))
		assert.True(t, l.Entries[i].ReferenceRate.Equal(back.Entries[i].ReferenceRate))
		assert.Equal(t, l.Entries[i].Status, back.Entries[i].Status)
		assert.Equal(t, l.Entries[i].SettlementRate.Valid, back.Entries[i].SettlementRate.Valid)
	}
}
