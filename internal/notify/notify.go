// Package notify delivers host refresh notifications after catalog writes.
// When a webhook endpoint is configured the host is told which store to
// re-render; otherwise notifications are discarded.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentstation/utc"
)

const userAgent = "playbill/0.1"

// Notifier tells the host environment that a store changed on disk.
type Notifier interface {
	Notify(ctx context.Context, storeID string) error
}

// Noop discards notifications. Used when no endpoint is configured.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, string) error { return nil }

// Webhook posts a refresh event to an HTTP endpoint.
type Webhook struct {
	endpoint string
	client   *http.Client
}

// NewWebhook builds a webhook notifier. A non-positive timeout falls back
// to ten seconds.
func NewWebhook(endpoint string, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type refreshEvent struct {
	StoreID     string   `json:"store_id"`
	RefreshedAt utc.Time `json:"refreshed_at"`
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, storeID string) error {
	body, err := json.Marshal(refreshEvent{
		StoreID:     storeID,
		RefreshedAt: utc.Now(),
	})
	if err != nil {
		return fmt.Errorf("encoding refresh event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting refresh event: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 300 {
		return fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
