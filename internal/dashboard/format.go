package dashboard

import (
	"fmt"
	"strings"

	"github.com/Alias1177/fxanalyst/models"
)

// DisplayHeadlines is how many headlines text renderings show.
const DisplayHeadlines = 5

const displayTime = "2006-01-02 15:04"

// FormatView renders a plain-text summary for the CLI and chat hosts.
func FormatView(v *View) string {
	var sb strings.Builder

	rate := "n/a"
	if v.Quote.Rate.IsPositive() {
		rate = v.Quote.Rate.String()
	}
	if v.Quote.Stale {
		rate += " (stale)"
	}

	sb.WriteString(fmt.Sprintf("%s  %s\n", v.Quote.Symbol, v.At.Format(displayTime)))
	sb.WriteString(fmt.Sprintf("Rate: %s\n", rate))
	sb.WriteString(fmt.Sprintf("US10Y: %s  VIX: %s\n", optional(v.Yield, v.Yield != 0), optional(v.Volatility, v.Volatility != 0)))
	sb.WriteString(fmt.Sprintf("SMA20: %s  RSI14: %s\n",
		optional(v.Indicators.SMA20, v.Indicators.HasSMA20), optional(v.Indicators.RSI14, v.Indicators.HasRSI14)))
	sb.WriteString(fmt.Sprintf("Win rate: %s (%d settled, %d pending)\n", v.Stats.WinRateLabel(), v.Stats.Settled, v.Stats.Pending))

	if v.Graded.Changed() {
		sb.WriteString(fmt.Sprintf("Graded %d prediction(s): %d win, %d loss\n", v.Graded.Settled, v.Graded.Wins, v.Graded.Losses))
	}

	if len(v.Headlines) > 0 {
		sb.WriteString("\nNews:\n")
		for i, h := range v.Headlines {
			if i == DisplayHeadlines {
				break
			}
			sb.WriteString("• " + h + "\n")
		}
	}

	return sb.String()
}

// FormatForecast renders the recorded call followed by the oracle's answer.
func FormatForecast(out *ForecastOutcome) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Forecast: %s at %s", out.Entry.Direction, out.Entry.ReferenceRate))
	if out.Forecast.Model != "" {
		sb.WriteString(" (" + out.Forecast.Model + ")")
	}
	sb.WriteString("\n")
	if r := strings.TrimSpace(out.Forecast.Rationale); r != "" {
		sb.WriteString("\n" + r + "\n")
	}
	return sb.String()
}

// FormatHistory renders recent entries, one per line.
func FormatHistory(entries []models.PredictionEntry) string {
	if len(entries) == 0 {
		return "No predictions yet."
	}

	var sb strings.Builder
	for _, e := range entries {
		final := "-"
		if e.SettlementRate.Valid {
			final = e.SettlementRate.Decimal.String()
		}
		sb.WriteString(fmt.Sprintf("%s  %-4s  %s → %s  %s\n",
			e.Timestamp.Format(displayTime), e.Direction, e.ReferenceRate.String(), final, e.Status))
	}
	return sb.String()
}

func optional(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
