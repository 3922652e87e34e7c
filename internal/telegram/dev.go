package telegram

import (
	"context"
	"log/slog"
	"os"
)

// DevNotifier logs deliveries instead of sending them. Used when no bot
// token is configured in development.
type DevNotifier struct {
	logger *slog.Logger
}

func NewDevNotifier(logger *slog.Logger) *DevNotifier {
	return &DevNotifier{logger: logger}
}

func (n *DevNotifier) SendText(ctx context.Context, telegramID int64, text string) error {
	n.logger.InfoContext(ctx, "notification", "telegram_id", telegramID, "text", text)
	return nil
}

func (n *DevNotifier) SendFile(ctx context.Context, telegramID int64, path, caption string) error {
	n.logger.InfoContext(ctx, "file delivery", "telegram_id", telegramID, "path", path, "caption", caption)
	return nil
}

// DevFileFetcher treats the file id as a local path. Used when no bot token
// is configured in development.
type DevFileFetcher struct{}

func (DevFileFetcher) Fetch(_ context.Context, fileID string) ([]byte, error) {
	return os.ReadFile(fileID)
}
