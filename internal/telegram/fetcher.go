package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileFetcher materializes a user's uploaded file from its remote reference.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// BotFileFetcher downloads uploads through the Telegram file API.
type BotFileFetcher struct {
	api    *tgbotapi.BotAPI
	client *http.Client
}

func NewBotFileFetcher(api *tgbotapi.BotAPI, client *http.Client) *BotFileFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &BotFileFetcher{api: api, client: client}
}

func (f *BotFileFetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	url, err := f.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", fileID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: unexpected status %d", fileID, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	return data, nil
}
