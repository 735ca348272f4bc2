package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/models"
)

// DefaultMaturityWindow is how long a forecast waits before it is graded.
const DefaultMaturityWindow = 24 * time.Hour

// DefaultHoldTolerance is the band inside which a HOLD call counts as correct.
var DefaultHoldTolerance = decimal.RequireFromString("0.15")

// Policy configures when and how pending forecasts are settled.
type Policy struct {
	MaturityWindow time.Duration
	HoldTolerance  decimal.Decimal
}

// DefaultPolicy returns the 24h window and 0.15 HOLD tolerance.
func DefaultPolicy() Policy {
	return Policy{
		MaturityWindow: DefaultMaturityWindow,
		HoldTolerance:  DefaultHoldTolerance,
	}
}

// GradeResult summarises a grading pass.
type GradeResult struct {
	Settled int  `json:"settled"`
	Wins    int  `json:"wins"`
	Losses  int  `json:"losses"`
	Skipped bool `json:"skipped"` // current rate was not usable, nothing was graded
}

// Changed reports whether the pass mutated the ledger.
func (r GradeResult) Changed() bool {
	return r.Settled > 0
}

// Grade settles every pending entry whose maturity window has elapsed at now,
// using currentRate as the observed outcome. Settled entries are never touched again.
// The rate is the one observed at grading time, not at the exact maturity instant.
func Grade(l *Ledger, currentRate decimal.Decimal, now time.Time, p Policy) GradeResult {
	var res GradeResult
	if l == nil {
		return res
	}
	if currentRate.LessThanOrEqual(decimal.Zero) {
		res.Skipped = true
		return res
	}

	for i := range l.Entries {
		e := &l.Entries[i]
		if e.Status != models.StatusPending {
			continue
		}
		if now.Sub(e.Timestamp) < p.MaturityWindow {
			continue
		}

		if isWin(e.Direction, e.ReferenceRate, currentRate, p.HoldTolerance) {
			e.Status = models.StatusWin
			res.Wins++
		} else {
			e.Status = models.StatusLoss
			res.Losses++
		}
		e.SettlementRate = decimal.NewNullDecimal(currentRate)
		res.Settled++
	}

	return res
}

func isWin(d models.Direction, reference, current, tolerance decimal.Decimal) bool {
	switch d {
	case models.DirectionBuy:
		return current.GreaterThan(reference)
	case models.DirectionSell:
		return current.LessThan(reference)
	case models.DirectionHold:
		return current.Sub(reference).Abs().LessThan(tolerance)
	}
	return false
}
