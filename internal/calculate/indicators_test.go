package calculate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/fxanalyst/models"
)

func candlesFromCloses(closes ...float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Close: c}
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		closes   []float64
		period   int
		expected float64
		ok       bool
	}{
		{name: "not enough data", closes: []float64{1, 2}, period: 3, ok: false},
		{name: "exact window", closes: []float64{1, 2, 3}, period: 3, expected: 2, ok: true},
		{name: "uses tail", closes: []float64{100, 1, 2, 3}, period: 3, expected: 2, ok: true},
		{name: "zero period", closes: []float64{1}, period: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SMA(tt.closes, tt.period)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name     string
		candles  []models.Candle
		expected float64
		ok       bool
	}{
		{name: "not enough data", candles: candlesFromCloses(1, 2), ok: false},
		{name: "only gains", candles: candlesFromCloses(1, 2, 3, 4), expected: 100, ok: true},
		{name: "only losses", candles: candlesFromCloses(4, 3, 2, 1), expected: 0, ok: true},
		{name: "flat", candles: candlesFromCloses(2, 2, 2, 2), expected: 50, ok: true},
		// gains 2, losses 1 -> rs 2 -> 66.67
		{name: "mixed", candles: candlesFromCloses(10, 12, 11, 11), expected: 100 - 100/3.0, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RSI(tt.candles, 3)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, got, 1e-6)
		})
	}
}

func TestCalculateIndicatorsShortHistory(t *testing.T) {
	ind := CalculateIndicators(candlesFromCloses(150, 151))
	assert.False(t, ind.HasSMA20)
	assert.False(t, ind.HasRSI14)
}
