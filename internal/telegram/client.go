// Package telegram sends the outward notifications: plain Markdown
// messages and document attachments, always to the single configured chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	applog "betpoisson/internal/log"
)

// Client wraps the Bot API client together with the fixed chat id.
// Outgoing sends are throttled to one per second, Telegram's per-chat
// limit, so a burst of slip events cannot trip the API.
type Client struct {
	api     *tgbot.BotAPI
	chatID  int64
	limiter *rate.Limiter
	log     *applog.Logger
}

// NewClient initializes the Bot API (which validates the token against
// getMe) and remembers the destination chat.
func NewClient(token string, chatID int64, logger *applog.Logger) (*Client, error) {
	api, err := tgbot.NewBotAPIWithClient(token, tgbot.APIEndpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("init Telegram bot: %w", err)
	}

	logger.Info("telegram bot ready", "username", api.Self.UserName, "chat_id", chatID)

	return &Client{
		api:     api,
		chatID:  chatID,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     logger,
	}, nil
}

// SendMessage delivers a Markdown text message to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	msg := tgbot.NewMessage(c.chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return nil
}

// SendDocument delivers a binary attachment with a Markdown caption.
func (c *Client) SendDocument(ctx context.Context, filename, caption string, data []byte) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	doc := tgbot.NewDocument(c.chatID, tgbot.FileBytes{Name: filename, Bytes: data})
	doc.Caption = caption
	doc.ParseMode = tgbot.ModeMarkdown
	if _, err := c.api.Send(doc); err != nil {
		return fmt.Errorf("telegram sendDocument: %w", err)
	}
	return nil
}
