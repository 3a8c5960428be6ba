package notify

import (
	"strings"
	"testing"

	"github.com/kirillm/thesis-desk/internal/domain"
)

func TestFormatThesis(t *testing.T) {
	t.Run("prefers the summary", func(t *testing.T) {
		message := formatThesis(&domain.Thesis{
			Text:            "long raw text",
			Summary:         "Banks benefit from steeper curves.",
			ConfidenceLevel: domain.LevelHigh,
			TickersLong:     []domain.TickerSuggestion{{Symbol: "JPM"}, {Symbol: "BAC"}},
			TickersShort:    []domain.TickerSuggestion{{Symbol: "TLT"}},
		})

		if !strings.Contains(message, "Banks benefit from steeper curves.") {
			t.Errorf("expected the summary in the message: %s", message)
		}
		if !strings.Contains(message, "Long: JPM, BAC") {
			t.Errorf("expected long tickers in the message: %s", message)
		}
		if !strings.Contains(message, "Short: TLT") {
			t.Errorf("expected short tickers in the message: %s", message)
		}
		if !strings.Contains(message, "Confidence: high") {
			t.Errorf("expected the confidence level in the message: %s", message)
		}
	})

	t.Run("falls back to truncated text", func(t *testing.T) {
		message := formatThesis(&domain.Thesis{Text: strings.Repeat("a", 500)})
		if strings.Count(message, "a") != 300 {
			t.Errorf("expected the text truncated to 300 runes: %s", message)
		}
		if !strings.HasSuffix(message, "…") {
			t.Errorf("expected an ellipsis suffix: %s", message)
		}
	})
}
