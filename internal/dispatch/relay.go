package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
)

// notifyTokenHeader authenticates this service to the downstream notify
// service.
const notifyTokenHeader = "X-Notify-Token"

// RelayDispatcher forwards the whole recipient batch in a single POST to
// the downstream notify service, which handles the actual SMS delivery.
type RelayDispatcher struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewRelayDispatcher creates a RelayDispatcher posting to endpoint with the
// shared secret token. Every call is bounded by timeout.
func NewRelayDispatcher(endpoint, token string, timeout time.Duration, logger *slog.Logger) *RelayDispatcher {
	return &RelayDispatcher{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name returns the dispatcher identifier.
func (d *RelayDispatcher) Name() string { return "relay" }

type relayScore struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

type relayMetadata struct {
	NotificationID string     `json:"notificationId"`
	MatchID        string     `json:"matchId"`
	Minute         int        `json:"minute"`
	Score          relayScore `json:"score"`
}

type relayRequest struct {
	Channel    string                `json:"channel"`
	Recipients []directory.Recipient `json:"recipients"`
	Message    string                `json:"message"`
	EventType  string                `json:"eventType"`
	Timestamp  string                `json:"timestamp"`
	Metadata   relayMetadata         `json:"metadata"`
}

// Dispatch posts the batch downstream. An HTTP failure of any kind degrades
// to a RelayResult carrying the status and error instead of an abort; the
// invocation itself still completes.
func (d *RelayDispatcher) Dispatch(ctx context.Context, evt event.InboundEvent, msg render.Message, recipients []directory.Recipient) Outcome {
	scoreA, scoreB := evt.Payload.Score()
	payload := relayRequest{
		Channel:    "sms",
		Recipients: recipients,
		Message:    msg.Body,
		EventType:  evt.Type,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Metadata: relayMetadata{
			NotificationID: uuid.New().String(),
			MatchID:        evt.Payload.String("matchId", ""),
			Minute:         evt.Payload.Int("minute", 0),
			Score:          relayScore{TeamA: scoreA, TeamB: scoreB},
		},
	}

	result := d.post(ctx, payload)
	out := Outcome{Relay: &result}
	if result.Error == "" {
		out.Sent = len(recipients)
	} else {
		out.Failed = len(recipients)
		d.logger.Warn("relay dispatch failed",
			slog.String("event_type", evt.Type),
			slog.Int("status", result.Status),
			slog.String("error", result.Error),
		)
	}
	return out
}

func (d *RelayDispatcher) post(ctx context.Context, payload relayRequest) RelayResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return RelayResult{Error: fmt.Sprintf("encoding relay payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return RelayResult{Error: fmt.Sprintf("building relay request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(notifyTokenHeader, d.token)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return RelayResult{Error: fmt.Sprintf("calling notify service: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface a snippet of the downstream error body when present.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return RelayResult{
			Status: resp.StatusCode,
			Error:  fmt.Sprintf("notify service returned status %d: %s", resp.StatusCode, snippet),
		}
	}

	return RelayResult{Status: resp.StatusCode}
}
