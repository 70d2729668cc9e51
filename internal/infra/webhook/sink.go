package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"reminder_notifier/internal/domain/notification"
)

const defaultTimeout = 10 * time.Second

// Sink POSTs each dispatch event as JSON to a fixed URL.
type Sink struct {
	url    string
	client *http.Client
}

func NewSink(url string, client *http.Client) *Sink {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Sink{url: url, client: client}
}

// Publish sends ev and treats any non-2xx response as an error.
func (s *Sink) Publish(ctx context.Context, ev notification.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
