// Package dispatch delivers a rendered message to the resolved recipients.
// Two dispatchers exist: direct per-recipient email delivery and a single
// batched relay to the downstream notify service. Both isolate external
// failures so that one bad recipient or one outage never aborts the batch.
package dispatch

import (
	"context"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
)

// Dispatcher sends a rendered message to a recipient batch.
type Dispatcher interface {
	// Name returns the dispatcher identifier (e.g. "email", "relay").
	Name() string
	// Dispatch delivers msg to recipients. It never returns an error:
	// every failure is accounted for inside the Outcome.
	Dispatch(ctx context.Context, evt event.InboundEvent, msg render.Message, recipients []directory.Recipient) Outcome
}

// Outcome is the per-batch delivery accounting. For the direct email path
// Sent+Failed equals the number of recipients with a usable address; for
// the relay path the whole batch succeeds or fails together and Relay
// carries the downstream result.
type Outcome struct {
	Sent   int              `json:"sent"`
	Failed int              `json:"failed"`
	Errors []RecipientError `json:"errors,omitempty"`
	Relay  *RelayResult     `json:"relay,omitempty"`
}

// RecipientError records one failed delivery, in send order.
type RecipientError struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// RelayResult captures the downstream notify service response. Status is 0
// when the call never completed (connection error or timeout).
type RelayResult struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}
