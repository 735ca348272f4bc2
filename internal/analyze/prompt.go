package analyze

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/fxanalyst/internal/calculate"
)

// PromptInput is the market snapshot handed to the oracle.
type PromptInput struct {
	Now        time.Time
	Symbol     string
	Rate       decimal.Decimal
	Yield      float64
	Volatility float64
	Indicators calculate.Indicators
	Headlines  []string
	Horizon    time.Duration
}

// BuildPrompt renders the forecast request. The answer must carry exactly
// one of the bracketed direction tokens.
func BuildPrompt(in PromptInput) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Current time: %s\n", in.Now.Format("2006-01-02 15:04 MST")))
	sb.WriteString(fmt.Sprintf("%s = %s\n", in.Symbol, in.Rate.String()))
	sb.WriteString(fmt.Sprintf("US 10Y yield: %s\n", formatOptional(in.Yield, in.Yield != 0)))
	sb.WriteString(fmt.Sprintf("VIX: %s\n", formatOptional(in.Volatility, in.Volatility != 0)))
	sb.WriteString(fmt.Sprintf("SMA20 (daily): %s\n", formatOptional(in.Indicators.SMA20, in.Indicators.HasSMA20)))
	sb.WriteString(fmt.Sprintf("RSI14 (daily): %s\n", formatOptional(in.Indicators.RSI14, in.Indicators.HasRSI14)))

	sb.WriteString("\nHeadlines:\n")
	if len(in.Headlines) == 0 {
		sb.WriteString("- none\n")
	}
	for _, h := range in.Headlines {
		sb.WriteString("- " + h + "\n")
	}

	sb.WriteString(fmt.Sprintf(
		"\nFrom the news and market data above, decide the direction of %s over the next %s.\n",
		in.Symbol, formatHorizon(in.Horizon)))
	sb.WriteString("Answer with exactly one of [BUY], [SELL] or [HOLD], followed by a short rationale.")

	return sb.String()
}

func formatOptional(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func formatHorizon(d time.Duration) string {
	if d > 0 && d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
