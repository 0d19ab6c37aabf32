package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BotClient communicates with the Telegram bot's internal API. The bot is the
// only component that talks to Telegram; this service just hands it text.
type BotClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewBotClient(baseURL string, log *zap.Logger) *BotClient {
	return &BotClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// NotifyChat posts a message into the escrow's group chat.
func (c *BotClient) NotifyChat(ctx context.Context, chatID int64, text string) error {
	return c.post(ctx, "/internal/notify", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
}

// NotifyUser sends a direct message to a single Telegram user.
func (c *BotClient) NotifyUser(ctx context.Context, telegramUserID int64, text string) error {
	return c.post(ctx, "/internal/notify", map[string]any{
		"telegram_user_id": telegramUserID,
		"text":             text,
	})
}

func (c *BotClient) post(ctx context.Context, path string, payload map[string]any) error {
	body, _ := json.Marshal(payload)

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("failed to reach bot service", zap.Error(err))
		return fmt.Errorf("bot service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("bot notification failed", zap.Int("status", resp.StatusCode))
	}
	return nil
}
