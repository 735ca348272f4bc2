package calculate

import "github.com/Alias1177/fxanalyst/models"

const (
	SMAPeriod = 20
	RSIPeriod = 14
)

// Indicators are the daily figures fed into the forecast prompt.
type Indicators struct {
	SMA20    float64 `json:"sma20"`
	HasSMA20 bool    `json:"has_sma20"`
	RSI14    float64 `json:"rsi14"`
	HasRSI14 bool    `json:"has_rsi14"`
}

// CalculateIndicators computes SMA20 and RSI14 over daily candles.
func CalculateIndicators(candles []models.Candle) Indicators {
	var ind Indicators
	ind.SMA20, ind.HasSMA20 = SMA(Closes(candles), SMAPeriod)
	ind.RSI14, ind.HasRSI14 = RSI(candles, RSIPeriod)
	return ind
}

func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
