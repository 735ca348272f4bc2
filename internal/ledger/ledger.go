// Package ledger holds the prediction ledger, the outcome grader and the
// win-rate aggregation.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Alias1177/fxanalyst/models"
)

var (
	// ErrInvalidEntry is returned when an entry breaks a structural invariant.
	ErrInvalidEntry = errors.New("invalid prediction entry")
	// ErrOutOfOrder is returned when an entry predates the last one in the ledger.
	ErrOutOfOrder = errors.New("prediction entry predates ledger tail")
)

// Ledger is the ordered record of forecasts. Insertion order is creation order.
type Ledger struct {
	Entries []models.PredictionEntry
}

// New builds a ledger from already persisted entries, validating each one.
func New(entries []models.PredictionEntry) (*Ledger, error) {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidEntry, i, err)
		}
	}
	return &Ledger{Entries: entries}, nil
}

// Append adds a freshly issued forecast. Only complete pending entries are accepted.
func (l *Ledger) Append(e models.PredictionEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if e.Status != models.StatusPending {
		return fmt.Errorf("%w: new entries must be %s, got %s", ErrInvalidEntry, models.StatusPending, e.Status)
	}
	if n := len(l.Entries); n > 0 && e.Timestamp.Before(l.Entries[n-1].Timestamp) {
		return ErrOutOfOrder
	}

	l.Entries = append(l.Entries, e)
	return nil
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.Entries)
}

// Recent returns up to n entries, newest first.
func (l *Ledger) Recent(n int) []models.PredictionEntry {
	out := make([]models.PredictionEntry, len(l.Entries))
	copy(out, l.Entries)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Clone returns a deep enough copy for callers that must not share the backing array.
func (l *Ledger) Clone() *Ledger {
	entries := make([]models.PredictionEntry, len(l.Entries))
	copy(entries, l.Entries)
	return &Ledger{Entries: entries}
}
