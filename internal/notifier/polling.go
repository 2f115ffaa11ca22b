package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler answers a text command; an empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

// StartPolling long-polls Telegram for commands sent in the mirror chat and
// answers them with handler. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.Bot.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			t.log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(ctx, update, handler)
		}
	}
}

func (t *TelegramNotifier) handleUpdate(ctx context.Context, update tgbotapi.Update, handler CommandHandler) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Chat.ID != t.ChatID {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	t.log.Info().Str("command", text).Msg("received command")
	reply := handler(ctx, text)
	if reply == "" {
		return
	}
	if err := t.Send(reply); err != nil {
		t.log.Error().Err(err).Msg("send reply")
	}
}
