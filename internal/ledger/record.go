package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/models"
)

// ErrInvalidRecord is returned when a persisted row cannot become a valid entry.
var ErrInvalidRecord = errors.New("invalid ledger record")

// RecordTimeLayout is the zone-qualified layout written to persisted rows.
const RecordTimeLayout = "2006-01-02 15:04:05-07:00"

var zonedLayouts = []string{
	time.RFC3339Nano,
	RecordTimeLayout,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
}

// rows written by older sheet-backed versions carry no zone
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ToRecord converts an entry into its persisted row.
func ToRecord(e models.PredictionEntry) models.LedgerRecord {
	rec := models.LedgerRecord{
		ID:     e.ID.String(),
		Time:   e.Timestamp.Format(RecordTimeLayout),
		Rate:   e.ReferenceRate.String(),
		Pred:   string(e.Direction),
		Status: string(e.Status),
	}
	if e.SettlementRate.Valid {
		rec.FinalRate = e.SettlementRate.Decimal.String()
	}
	return rec
}

// FromRecord parses and validates a persisted row. Zone-less timestamps are
// interpreted in loc; all timestamps are returned in loc.
func FromRecord(rec models.LedgerRecord, loc *time.Location) (models.PredictionEntry, error) {
	var e models.PredictionEntry
	if loc == nil {
		loc = time.UTC
	}

	ts, err := ParseTime(rec.Time, loc)
	if err != nil {
		return e, fmt.Errorf("%w: time: %v", ErrInvalidRecord, err)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rec.Rate))
	if err != nil {
		return e, fmt.Errorf("%w: rate %q: %v", ErrInvalidRecord, rec.Rate, err)
	}

	status, err := parseStatus(rec.Status)
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	e = models.PredictionEntry{
		Timestamp:     ts,
		ReferenceRate: rate,
		Direction:     models.Direction(strings.ToUpper(strings.TrimSpace(rec.Pred))),
		Status:        status,
	}

	if final := strings.TrimSpace(rec.FinalRate); !isBlank(final) {
		fr, err := decimal.NewFromString(final)
		if err != nil {
			return e, fmt.Errorf("%w: final_rate %q: %v", ErrInvalidRecord, rec.FinalRate, err)
		}
		e.SettlementRate = decimal.NewNullDecimal(fr)
	}

	if rec.ID != "" {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return e, fmt.Errorf("%w: id %q: %v", ErrInvalidRecord, rec.ID, err)
		}
		e.ID = id
	} else {
		// stable across reads so an imported sheet keeps its identities
		e.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.Time+"|"+rec.Rate+"|"+rec.Pred))
	}

	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return e, nil
}

// FromRecords converts a whole sheet into a ledger, failing on the first bad row.
func FromRecords(recs []models.LedgerRecord, loc *time.Location) (*Ledger, error) {
	entries := make([]models.PredictionEntry, 0, len(recs))
	for i, rec := range recs {
		e, err := FromRecord(rec, loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return &Ledger{Entries: entries}, nil
}

func ToRecords(l *Ledger) []models.LedgerRecord {
	recs := make([]models.LedgerRecord, 0, l.Len())
	for _, e := range l.Entries {
		recs = append(recs, ToRecord(e))
	}
	return recs
}

// ParseTime accepts zone-qualified and zone-less layouts and returns the instant in loc.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

func parseStatus(value string) (models.Status, error) {
	v := strings.TrimSpace(value)
	for _, s := range []models.Status{models.StatusPending, models.StatusWin, models.StatusLoss} {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

func isBlank(v string) bool {
	switch strings.ToLower(v) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}
