package analyze

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/fxanalyst/internal/calculate"
	"github.com/Alias1177/fxanalyst/models"
)

func TestExtractDirection(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.Direction
	}{
		{name: "buy", text: "[BUY] yields are rising", expected: models.DirectionBuy},
		{name: "sell", text: "Outlook: [SELL]", expected: models.DirectionSell},
		{name: "lowercase sell", text: "[sell] risk-off flows", expected: models.DirectionSell},
		{name: "both tokens prefer buy", text: "[SELL] or maybe [BUY]", expected: models.DirectionBuy},
		{name: "explicit hold", text: "[HOLD] range bound", expected: models.DirectionHold},
		{name: "no token", text: "the market will go up", expected: models.DirectionHold},
		{name: "bare word without brackets", text: "BUY", expected: models.DirectionHold},
		{name: "empty", text: "", expected: models.DirectionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDirection(tt.text))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	in := PromptInput{
		Now:        time.Date(2026, 1, 9, 10, 30, 0, 0, time.FixedZone("JST", 9*3600)),
		Symbol:     "USD/JPY",
		Rate:       decimal.RequireFromString("150.457"),
		Yield:      4.12,
		Indicators: calculate.Indicators{SMA20: 149.8, HasSMA20: true},
		Headlines:  []string{"BOJ holds rates", "Dollar firms"},
		Horizon:    24 * time.Hour,
	}

	prompt := BuildPrompt(in)

	assert.Contains(t, prompt, "2026-01-09 10:30 JST")
	assert.Contains(t, prompt, "USD/JPY = 150.457")
	assert.Contains(t, prompt, "US 10Y yield: 4.12")
	assert.Contains(t, prompt, "VIX: n/a")
	assert.Contains(t, prompt, "SMA20 (daily): 149.80")
	assert.Contains(t, prompt, "RSI14 (daily): n/a")
	assert.Contains(t, prompt, "- BOJ holds rates\n- Dollar firms\n")
	assert.Contains(t, prompt, "next 24 hours")
	assert.Contains(t, prompt, "[BUY], [SELL] or [HOLD]")
}

func TestBuildPromptWithoutHeadlines(t *testing.T) {
	prompt := BuildPrompt(PromptInput{Symbol: "USD/JPY", Horizon: 90 * time.Minute})

	assert.Contains(t, prompt, "- none\n")
	assert.Contains(t, prompt, "next 1h30m0s")
}
