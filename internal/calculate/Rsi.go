package calculate

import "github.com/Alias1177/fxanalyst/models"

// RSI uses plain rolling means of gains and losses over the last period
// changes, not Wilder smoothing.
func RSI(candles []models.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	var gains, losses float64
	for i := len(candles) - period; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0, true
		}
		return 100.0, true
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs)), true
}
