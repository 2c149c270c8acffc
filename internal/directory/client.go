// Package directory resolves the recipients interested in an event by
// querying the external recipient directory service. Lookup failures are
// never fatal to an invocation: the resolver degrades to an empty list and
// logs the reason.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaharia-lab/matchday-notifier/internal/event"
)

// Recipient is an addressable party eligible to receive a notification.
// All fields are optional; a recipient without a usable address for the
// active channel is skipped during dispatch.
type Recipient struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Client queries the recipient directory service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a directory Client. Every lookup is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// lookupURL maps an event to its directory lookup URL. Events the directory
// does not cover return an empty URL, meaning no call is made.
func (c *Client) lookupURL(eventType string, p event.Payload) string {
	switch eventType {
	case event.TypeMatchScheduled, event.TypeGoalScored:
		return fmt.Sprintf("%s/recipients/%s/recipients", c.baseURL, p.String("matchId", "unknown"))
	case event.TypeAlertPublished:
		return fmt.Sprintf("%s/recipients/alerts/%s/recipients", c.baseURL, p.String("alertId", "unknown"))
	}
	return ""
}

// Resolve returns the recipients interested in the event. Network errors,
// timeouts, non-2xx statuses, and malformed responses all degrade to an
// empty list.
func (c *Client) Resolve(ctx context.Context, evt event.InboundEvent) []Recipient {
	url := c.lookupURL(evt.Type, evt.Payload)
	if url == "" {
		return nil
	}

	recipients, err := c.fetch(ctx, url)
	if err != nil {
		c.logger.Warn("recipient lookup failed",
			slog.String("event_type", evt.Type),
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return recipients
}

func (c *Client) fetch(ctx context.Context, url string) ([]Recipient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building directory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling directory service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("directory service returned status %d", resp.StatusCode)
	}

	var body struct {
		Recipients []Recipient `json:"recipients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding directory response: %w", err)
	}
	return body.Recipients, nil
}
