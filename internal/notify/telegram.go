package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kirillm/thesis-desk/internal/domain"
	"github.com/kirillm/thesis-desk/pkg/utils"
)

// TelegramNotifier announces newly published theses to a Telegram chat.
// Delivery is best-effort: failures are logged and never surface to the
// request path.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *utils.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *utils.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram notifier authorized: @%s", bot.Self.UserName)

	return &TelegramNotifier{
		api:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (n *TelegramNotifier) ThesisPublished(thesis *domain.Thesis) {
	n.send(formatThesis(thesis))
}

func (n *TelegramNotifier) send(text string) {
	message := tgbotapi.NewMessage(n.chatID, text)
	message.ParseMode = "Markdown"
	if _, err := n.api.Send(message); err != nil {
		n.logger.Error("Failed to send telegram message: %v", err)
	}
}

func formatThesis(thesis *domain.Thesis) string {
	var b strings.Builder
	b.WriteString("📈 *New thesis published*\n\n")

	if thesis.Summary != "" {
		b.WriteString(thesis.Summary)
	} else {
		b.WriteString(truncate(thesis.Text, 300))
	}

	if thesis.ConfidenceLevel != "" {
		fmt.Fprintf(&b, "\n\nConfidence: %s", thesis.ConfidenceLevel)
	}
	if len(thesis.TickersLong) > 0 {
		fmt.Fprintf(&b, "\nLong: %s", joinSymbols(thesis.TickersLong))
	}
	if len(thesis.TickersShort) > 0 {
		fmt.Fprintf(&b, "\nShort: %s", joinSymbols(thesis.TickersShort))
	}

	return b.String()
}

func joinSymbols(suggestions []domain.TickerSuggestion) string {
	symbols := make([]string, 0, len(suggestions))
	for _, suggestion := range suggestions {
		symbols = append(symbols, suggestion.Symbol)
	}
	return strings.Join(symbols, ", ")
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
