package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"modbot/internal/core"
)

// WebhookPayload is the JSON body posted to a configured webhook when an
// alert fires.
type WebhookPayload struct {
	Event     string     `json:"event"`
	Alert     core.Alert `json:"alert"`
	Subreddit string     `json:"subreddit,omitempty"`
	SentAt    time.Time  `json:"sentAt"`
}

// WebhookClient posts alert payloads to user-configured webhook URLs.
type WebhookClient struct {
	HTTPClient *http.Client
}

// NewWebhookClient creates a webhook client with sane timeouts.
func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendAlert posts an alert to the given webhook URL.
func (c *WebhookClient) SendAlert(url string, alert core.Alert, subreddit string) error {
	if url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	payload := WebhookPayload{
		Event:     "alert.created",
		Alert:     alert,
		Subreddit: subreddit,
		SentAt:    time.Now().UTC(),
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := c.HTTPClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
