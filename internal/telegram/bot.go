package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const pollTimeoutSeconds = 30

// New creates a bot. apiURL is normally https://api.telegram.org.
func New(token, apiURL string, logger zerolog.Logger) *Bot {
	apiURL = strings.TrimRight(apiURL, "/")
	return &Bot{
		token:   token,
		baseURL: fmt.Sprintf("%s/bot%s", apiURL, token),
		fileURL: fmt.Sprintf("%s/file/bot%s", apiURL, token),
		client:  &http.Client{Timeout: (pollTimeoutSeconds + 10) * time.Second},
		logger:  logger.With().Str("component", "telegram").Logger(),
	}
}

// GetUpdates long-polls for new updates.
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, pollTimeoutSeconds)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}

	var response GetUpdatesResponse
	err = json.Unmarshal(body, &response)
	if err != nil {
		return nil, fmt.Errorf("parse getUpdates response: %w", err)
	}

	if !response.OK {
		return nil, fmt.Errorf("telegram API error: %s", response.Description)
	}

	return response.Result, nil
}

// SendMessage sends plain text. Generated text is never sent as Markdown
// because unbalanced markup makes Telegram reject the whole message.
func (b *Bot) SendMessage(chatID int64, text string) error {
	request := SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}
	var response SendMessageResponse
	if err := b.post(context.Background(), "sendMessage", request, &response); err != nil {
		return err
	}
	if !response.OK {
		return fmt.Errorf("sendMessage failed: %s", response.Description)
	}
	return nil
}

// SendVoice re-sends a voice note by file id.
func (b *Bot) SendVoice(chatID int64, fileID, caption string) error {
	request := SendVoiceRequest{
		ChatID:  chatID,
		Voice:   fileID,
		Caption: caption,
	}
	var response SendMessageResponse
	if err := b.post(context.Background(), "sendVoice", request, &response); err != nil {
		return err
	}
	if !response.OK {
		return fmt.Errorf("sendVoice failed: %s", response.Description)
	}
	return nil
}

// GetFile resolves a file id into a downloadable path.
func (b *Bot) GetFile(ctx context.Context, fileID string) (*File, error) {
	var response GetFileResponse
	if err := b.post(ctx, "getFile", GetFileRequest{FileID: fileID}, &response); err != nil {
		return nil, err
	}
	if !response.OK || response.Result == nil {
		return nil, fmt.Errorf("getFile failed: %s", response.Description)
	}
	return response.Result, nil
}

// DownloadFile fetches at most limit bytes of a file returned by GetFile.
func (b *Bot) DownloadFile(ctx context.Context, filePath string, limit int64) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", b.fileURL, strings.TrimLeft(filePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", filePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", filePath, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file is larger than %d bytes", limit)
	}
	return data, nil
}

// StartPolling feeds updates to handler until ctx is cancelled. Each update is
// handled in its own goroutine.
func (b *Bot) StartPolling(ctx context.Context, handler func(Update)) error {
	offset := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error().Err(err).Msg("getting updates")
			sleep(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			go handler(update)
		}

		if len(updates) == 0 {
			sleep(ctx, 1*time.Second)
		}
	}
}

func (b *Bot) post(ctx context.Context, method string, request, response interface{}) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	url := fmt.Sprintf("%s/%s", b.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	err = json.Unmarshal(body, response)
	if err != nil {
		return fmt.Errorf("parse %s response: %w", method, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
