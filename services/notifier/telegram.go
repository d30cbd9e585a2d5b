package notifier

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"freelanceradar/internal/scraper"
	"freelanceradar/logger"
)

// maxListingsPerMessage bounds the alert body; the remainder is summarized.
const maxListingsPerMessage = 5

// TelegramNotifier sends new-listing alerts to a Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// NewTelegramNotifier creates a notifier for the given bot token and chat
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{
		api:    api,
		chatID: chatID,
		log:    logger.ForNotifier(),
	}, nil
}

// FromConfig returns a Telegram notifier when both token and chat ID are
// configured, and the silent no-op notifier otherwise.
func FromConfig(token string, chatID int64) Notifier {
	if token == "" || chatID == 0 {
		logger.ForNotifier().Info().Msg("telegram not configured, notifications disabled")
		return Noop{}
	}
	tn, err := NewTelegramNotifier(token, chatID)
	if err != nil {
		logger.ForNotifier().Warn().Err(err).Msg("telegram bot init failed, notifications disabled")
		return Noop{}
	}
	return tn
}

// Notify sends one message summarizing the batch. Delivery is best effort:
// every failure mode, including a panic inside the bot client, degrades to
// a false return.
func (n *TelegramNotifier) Notify(listings []scraper.Listing) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().Msgf("notification panicked: %v", r)
			sent = false
		}
	}()

	if len(listings) == 0 {
		return false
	}

	msg := tgbotapi.NewMessage(n.chatID, n.buildMessage(listings))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.api.Send(msg); err != nil {
		n.log.Error().Err(err).Msg("failed to send notification")
		return false
	}

	n.log.Info().Int("listings", len(listings)).Msg("notification sent")
	return true
}

func (n *TelegramNotifier) buildMessage(listings []scraper.Listing) string {
	var b strings.Builder

	plural := ""
	if len(listings) > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "🎉 *¡%d nuevo%s trabajo%s!*\n\n", len(listings), plural, plural)

	shown := listings
	if len(shown) > maxListingsPerMessage {
		shown = shown[:maxListingsPerMessage]
	}

	for i, l := range shown {
		fmt.Fprintf(&b, "📌 *%d. %s*\n", i+1, l.Title)
		fmt.Fprintf(&b, "📍 %s\n", l.Country)
		if l.Budget != "" && l.Budget != scraper.Unspecified {
			fmt.Fprintf(&b, "💰 %s\n", l.Budget)
		}
		if len(l.Skills) > 0 {
			top := l.Skills
			if len(top) > 3 {
				top = top[:3]
			}
			fmt.Fprintf(&b, "💻 %s\n", strings.Join(top, ", "))
		}
		fmt.Fprintf(&b, "🔖 %s\n", l.Source)
		fmt.Fprintf(&b, "🔗 %s\n\n", l.Link)
	}

	if len(listings) > maxListingsPerMessage {
		fmt.Fprintf(&b, "_...y %d trabajos más_\n\n", len(listings)-maxListingsPerMessage)
	}

	fmt.Fprintf(&b, "🕒 %s", time.Now().Format("02/01/2006 15:04"))
	return b.String()
}
