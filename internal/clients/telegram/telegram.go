package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a minimal Telegram Bot API wrapper covering the two calls the
// notification dispatcher needs.
type Client struct {
	token  string
	chatID string
	http   *http.Client
}

func New(token, chatID string) *Client {
	return &Client{
		token:  token,
		chatID: chatID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

func (c *Client) SendText(ctx context.Context, msg string) (int64, error) {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":    c.chatID,
		"text":       msg,
		"parse_mode": "HTML",
	})
}

func (c *Client) SendPhoto(ctx context.Context, photoURL string, caption string) (int64, error) {
	return c.call(ctx, "sendPhoto", map[string]interface{}{
		"chat_id":    c.chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	})
}

func (c *Client) call(ctx context.Context, method string, payload map[string]interface{}) (int64, error) {
	if c.token == "" || c.chatID == "" {
		return 0, errors.New("missing telegram token or chat id")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/%s", c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	var out apiResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return 0, fmt.Errorf("telegram http error (%d): %s", resp.StatusCode, string(respBody))
	}
	if !out.OK {
		return 0, fmt.Errorf("telegram error (%d): %s", resp.StatusCode, out.Description)
	}

	return out.Result.MessageID, nil
}
