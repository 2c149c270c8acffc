package dispatch

import (
	"context"
	"log/slog"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/notification"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
)

// EmailDispatcher sends one email per recipient through a notification
// Provider. Sends are sequential, so the outcome counters need no
// synchronization.
type EmailDispatcher struct {
	provider notification.Provider
	logger   *slog.Logger
}

// NewEmailDispatcher creates an EmailDispatcher on top of provider.
func NewEmailDispatcher(provider notification.Provider, logger *slog.Logger) *EmailDispatcher {
	return &EmailDispatcher{provider: provider, logger: logger}
}

// Name returns the dispatcher identifier.
func (d *EmailDispatcher) Name() string { return "email" }

// Dispatch iterates recipients and sends the rendered message to each one
// with an email address. Recipients without an address are skipped and not
// counted. A failed send is counted and logged; the loop always continues.
func (d *EmailDispatcher) Dispatch(ctx context.Context, evt event.InboundEvent, msg render.Message, recipients []directory.Recipient) Outcome {
	var out Outcome
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}

		err := d.provider.Send(ctx, notification.Message{
			Subject: msg.Subject,
			Body:    msg.Body,
			To:      r.Email,
		})
		if err != nil {
			out.Failed++
			out.Errors = append(out.Errors, RecipientError{Recipient: r.Email, Reason: err.Error()})
			d.logger.Warn("email send failed",
				slog.String("event_type", evt.Type),
				slog.String("recipient", r.Email),
				slog.String("error", err.Error()),
			)
			continue
		}

		out.Sent++
		d.logger.Debug("email sent", slog.String("recipient", r.Email))
	}
	return out
}
