package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPNotifier posts shipment events to the owning channel's endpoint.
type HTTPNotifier struct {
	channels   Channels
	httpClient *http.Client
}

// HTTPNotifierConfig configures an HTTPNotifier.
type HTTPNotifierConfig struct {
	Channels Channels
	Timeout  time.Duration
}

func NewHTTPNotifier(config HTTPNotifierConfig) *HTTPNotifier {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPNotifier{
		channels:   config.Channels,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Notify delivers the event to the channel owning the shipment. Any
// non-2xx response counts as a failed delivery so the caller can retry
// on its next pass.
func (n *HTTPNotifier) Notify(ctx context.Context, event ShipmentEvent) error {
	channel, err := n.channels.Lookup(event.PartnerID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode shipment event: %w", err)
	}

	url := channel.BaseURL + "/shipments/" + event.ShipmentNumber + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", channel.Key)
	req.Header.Set("Authorization", "Bearer "+channel.Secret)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification to %s: %w", event.PartnerID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("channel %s rejected notification: status %d", event.PartnerID, resp.StatusCode)
	}
	return nil
}

var _ Notifier = (*HTTPNotifier)(nil)
