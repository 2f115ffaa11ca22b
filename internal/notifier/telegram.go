package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TelegramNotifier mirrors announcements into a Telegram chat.
type TelegramNotifier struct {
	Bot    *tgbotapi.BotAPI
	ChatID int64
	// Retries is the number of extra attempts Announce makes.
	Retries int

	log zerolog.Logger
}

// NewTelegramNotifier authenticates against the Bot API. An empty endpoint
// selects the public Telegram API.
func NewTelegramNotifier(botToken string, chatID int64, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	l := log.With().Str("component", "telegram").Logger()
	l.Info().Str("bot", bot.Self.UserName).Int64("chat", chatID).Msg("telegram mirror ready")
	return &TelegramNotifier{Bot: bot, ChatID: chatID, Retries: 2, log: l}, nil
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	if _, err := t.Bot.Send(tgbotapi.NewMessage(t.ChatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := time.Duration(1<<uint(i)) * time.Second
			t.log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("telegram send failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed: %w", maxRetries+1, lastErr)
}

// Announce implements scheduler.Poster.
func (t *TelegramNotifier) Announce(ctx context.Context, text string) error {
	return t.SendWithRetry(ctx, text, t.Retries)
}
