package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/contact-solution/leadbot/core/logger"
)

const defaultGraphBase = "https://graph.facebook.com"

// ClientConfig carries the Cloud API credentials for outbound sends.
type ClientConfig struct {
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	// BaseURL overrides the Graph API origin, used in tests.
	BaseURL string
}

// Client sends text messages through the Graph API messages endpoint.
type Client struct {
	http    *http.Client
	cfg     ClientConfig
	baseURL string
}

// NewClient builds a Graph API client with the tuned retrying HTTP transport.
func NewClient(cfg ClientConfig) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v20.0"
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultGraphBase
	}
	return &Client{
		http:    BuildHTTPClient(),
		cfg:     cfg,
		baseURL: base,
	}
}

type sendTextRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendText posts a plain text message to the recipient. API failures carry
// the HTTP status as a trailing "(NNN)" so the retry layer can classify them.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := sendTextRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: encode send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.cfg.APIVersion, c.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("whatsapp: build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: send to %s: %w", logger.MaskPhone(to), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		logger.Debug(ctx, "whatsapp", "send.ok",
			slog.String("phone", logger.MaskPhone(to)),
			slog.Int("http_code", resp.StatusCode),
			slog.Duration("duration", time.Since(start)),
		)
		return nil
	}

	msg := graphErrorMessage(resp.Body)
	return fmt.Errorf("whatsapp: send to %s: %s (%d)", logger.MaskPhone(to), msg, resp.StatusCode)
}

func graphErrorMessage(body io.Reader) string {
	var apiErr graphErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, 32<<10)).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return "graph api error"
}
