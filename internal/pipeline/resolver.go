package pipeline

import (
	"context"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
)

// PayloadResolver reads the recipient batch directly from the event payload
// (the caller-supplied variant); no directory lookup is performed.
type PayloadResolver struct{}

// Resolve extracts the "recipients" array from the payload. Entries that
// are not objects are skipped; all descriptor fields are optional.
func (PayloadResolver) Resolve(_ context.Context, evt event.InboundEvent) []directory.Recipient {
	raw, ok := evt.Payload["recipients"].([]any)
	if !ok {
		return nil
	}

	var recipients []directory.Recipient
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields := event.Payload(m)
		recipients = append(recipients, directory.Recipient{
			Email: fields.String("email", ""),
			Phone: fields.String("phone", ""),
			ID:    fields.String("id", ""),
		})
	}
	return recipients
}
