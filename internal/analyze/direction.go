package analyze

import (
	"strings"

	"github.com/Alias1177/fxanalyst/models"
)

// ExtractDirection maps free text onto a direction. [BUY] takes precedence
// over [SELL]; text carrying neither token is HOLD.
func ExtractDirection(text string) models.Direction {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "[BUY]"):
		return models.DirectionBuy
	case strings.Contains(upper, "[SELL]"):
		return models.DirectionSell
	default:
		return models.DirectionHold
	}
}
