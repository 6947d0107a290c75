package notify

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"linecal/internal/log"
)

// Telegram pushes notifications to a fixed chat. It stands in for the
// original's push channel: the user gets reminders even with the app
// closed.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes against the Bot API. An empty token or chat id
// yields a notifier whose permission is denied rather than an error, so
// callers can wire it unconditionally.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" || chatID == 0 {
		return &Telegram{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("push notifier authorized", "account", api.Self.UserName)
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) RequestPermission() Permission { return t.Permission() }

func (t *Telegram) Permission() Permission {
	if t.api == nil {
		return PermissionDenied
	}
	return PermissionGranted
}

func (t *Telegram) Show(title, body string, meta Metadata) bool {
	if t.api == nil {
		return false
	}
	text := fmt.Sprintf("🔔 <b>%s</b>", html.EscapeString(title))
	if body != "" {
		text += "\n" + html.EscapeString(body)
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		log.Error("push notification failed", err, "schedule", meta.ScheduleID)
		return false
	}
	return true
}
