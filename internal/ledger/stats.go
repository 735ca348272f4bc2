package ledger

import (
	"fmt"

	"github.com/Alias1177/fxanalyst/models"
)

// Stats is the running accuracy of settled forecasts.
type Stats struct {
	Settled int     `json:"settled"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Pending int     `json:"pending"`
	WinRate float64 `json:"win_rate"` // percent, 0 when nothing is settled
}

// HasData is false until at least one forecast has been settled.
func (s Stats) HasData() bool {
	return s.Settled > 0
}

// WinRateLabel keeps "no data" distinguishable from a real 0%.
func (s Stats) WinRateLabel() string {
	if !s.HasData() {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", s.WinRate)
}

func ComputeStats(l *Ledger) Stats {
	var s Stats
	if l == nil {
		return s
	}

	for _, e := range l.Entries {
		switch e.Status {
		case models.StatusWin:
			s.Wins++
		case models.StatusLoss:
			s.Losses++
		case models.StatusPending:
			s.Pending++
		}
	}

	s.Settled = s.Wins + s.Losses
	if s.Settled > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Settled) * 100
	}
	return s
}
