// Package telegram holds the Telegram-facing adapters: the notifier and
// file-transfer collaborators the worker consumes, and the thin command
// front-end.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier pushes messages and files back to a submitter. Calls are best
// effort from the caller's point of view; only the worker's report-delivery
// step escalates a failure.
type Notifier interface {
	SendText(ctx context.Context, telegramID int64, text string) error
	SendFile(ctx context.Context, telegramID int64, path, caption string) error
}

// BotNotifier delivers through the Telegram Bot API.
type BotNotifier struct {
	api *tgbotapi.BotAPI
}

func NewBotNotifier(api *tgbotapi.BotAPI) *BotNotifier {
	return &BotNotifier{api: api}
}

func (n *BotNotifier) SendText(_ context.Context, telegramID int64, text string) error {
	if _, err := n.api.Send(tgbotapi.NewMessage(telegramID, text)); err != nil {
		return fmt.Errorf("send message to %d: %w", telegramID, err)
	}
	return nil
}

func (n *BotNotifier) SendFile(_ context.Context, telegramID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(telegramID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := n.api.Send(doc); err != nil {
		return fmt.Errorf("send document to %d: %w", telegramID, err)
	}
	return nil
}
