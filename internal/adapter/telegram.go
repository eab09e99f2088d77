package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/harunnryd/kaizen/internal/concurrency"
	"github.com/harunnryd/kaizen/internal/errors"
	"github.com/harunnryd/kaizen/internal/idempotency"
)

type TelegramAdapter struct {
	token         string
	updateTimeout int
	dedupe        *idempotency.Store
	dedupeTTL     time.Duration
	handler       MessageHandler
	bot           *tgbotapi.BotAPI
	updates       tgbotapi.UpdatesChannel
}

func NewTelegramAdapter(token string, handler MessageHandler, updateTimeout int, dedupe *idempotency.Store, dedupeTTL time.Duration) *TelegramAdapter {
	if updateTimeout <= 0 {
		updateTimeout = 60
	}
	if dedupeTTL <= 0 {
		dedupeTTL = 24 * time.Hour
	}
	return &TelegramAdapter{
		token:         token,
		updateTimeout: updateTimeout,
		dedupe:        dedupe,
		dedupeTTL:     dedupeTTL,
		handler:       handler,
	}
}

func (t *TelegramAdapter) Name() string {
	return "telegram"
}

func (t *TelegramAdapter) Start(ctx context.Context) error {
	var err error
	t.bot, err = tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return errors.Wrap(err, "failed to init telegram bot")
	}

	slog.Info("Telegram adapter started", "user", t.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.updateTimeout

	t.updates = t.bot.GetUpdatesChan(u)

	concurrency.SafeGo(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update := <-t.updates:
				t.handleUpdate(ctx, update)
			}
		}
	}, nil)

	return nil
}

func (t *TelegramAdapter) Stop(ctx context.Context) error {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
	return nil
}

func (t *TelegramAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message
	userID := fmt.Sprintf("%d", msg.Chat.ID)

	// UpdateID is globally unique; MessageID is only unique per chat.
	if t.dedupe != nil {
		key := idempotency.EventKey("telegram", int64(update.UpdateID))
		seen, err := t.dedupe.Seen(key, t.dedupeTTL)
		if err != nil {
			slog.Error("Dedupe check failed, dropping update", "error", err, "update_id", update.UpdateID)
			return
		}
		if seen {
			slog.Debug("Skipping duplicate update", "update_id", update.UpdateID)
			return
		}
	}

	reply, err := t.handler(ctx, userID, msg.Text)
	if err != nil {
		slog.Error("Failed to handle Telegram message", "error", err, "chat_id", userID)
		reply = userFacingError(err)
	}
	if reply == "" {
		return
	}
	if err := t.Notify(ctx, userID, reply); err != nil {
		slog.Error("Failed to send Telegram reply", "error", err, "chat_id", userID)
	}
}

// Notify sends a message to the chat identified by userID.
func (t *TelegramAdapter) Notify(ctx context.Context, userID, content string) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return errors.InvalidInput("invalid telegram chat id: " + err.Error())
	}

	msg := tgbotapi.NewMessage(chatID, content)
	if _, err := t.bot.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}
	slog.Debug("Telegram message sent", "chat_id", userID)
	return nil
}

func (t *TelegramAdapter) Health(ctx context.Context) error {
	if t.bot == nil {
		return errors.Internal("telegram bot not initialized")
	}
	if _, err := t.bot.GetMe(); err != nil {
		return errors.Wrap(err, "telegram connection failed")
	}
	return nil
}

// userFacingError maps pipeline errors to something safe to show in chat.
func userFacingError(err error) string {
	switch {
	case errors.IsCategory(err, errors.ErrRateLimited):
		return "You're sending messages too quickly. Give it a minute."
	case errors.IsCategory(err, errors.ErrInvalidInput):
		return "I can't process that message."
	default:
		return "Something went wrong on my side. Try again shortly."
	}
}
