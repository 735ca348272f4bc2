package models

// CalculateCandlesForPeriod returns how many candles of the given interval
// cover the requested number of days.
func CalculateCandlesForPeriod(interval string, days int) int {
	if days < 1 {
		days = 1
	}

	candlesPerDay := 0

	switch interval {
	case "1min":
		candlesPerDay = 24 * 60
	case "5min":
		candlesPerDay = 24 * 12
	case "15min":
		candlesPerDay = 24 * 4
	case "30min":
		candlesPerDay = 24 * 2
	case "1h":
		candlesPerDay = 24
	case "2h":
		candlesPerDay = 12
	case "4h":
		candlesPerDay = 6
	case "1day":
		candlesPerDay = 1
	case "1week":
		candlesPerDay = 1
		days = days / 7
		if days < 1 {
			days = 1
		}
	default:
		candlesPerDay = 1
	}

	// Twelve Data caps outputsize at 5000
	count := candlesPerDay * days
	if count > 5000 {
		count = 5000
	}
	return count
}
