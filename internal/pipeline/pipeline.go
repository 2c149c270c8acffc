// Package pipeline orchestrates one notification invocation:
// parse the inbound body, classify the event, resolve recipients, render
// the message, dispatch it, and summarize the outcome. The pipeline never
// lets a failure escape its boundary; every error becomes a structured
// result.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/dispatch"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/metrics"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
	"github.com/shaharia-lab/matchday-notifier/internal/storage"
)

// Parser decodes a raw request body into an InboundEvent.
type Parser func(body []byte) (event.InboundEvent, error)

// Resolver produces the recipient batch for an event. Implementations
// degrade to an empty list instead of failing.
type Resolver interface {
	Resolve(ctx context.Context, evt event.InboundEvent) []directory.Recipient
}

// Renderer maps an event to its message content.
type Renderer func(eventType string, p event.Payload) render.Message

// Result is the structured outcome of one invocation. StatusCode follows
// the invocation contract: 200 on completion (including zero recipients and
// degraded dispatch), 400 on malformed input, 500 on an unexpected fault.
type Result struct {
	StatusCode int
	Body       any
}

// Summary is the JSON body of a completed invocation.
type Summary struct {
	InvocationID    string                    `json:"invocation_id"`
	EventType       string                    `json:"event_type"`
	RecipientsCount int                       `json:"recipients_count"`
	Sent            int                       `json:"sent"`
	Failed          int                       `json:"failed"`
	Errors          []dispatch.RecipientError `json:"errors,omitempty"`
	Relay           *dispatch.RelayResult     `json:"relay,omitempty"`
	Message         string                    `json:"message,omitempty"`
}

// Pipeline binds a parser, resolver, renderer and dispatcher into one
// invocation controller. The two deployment variants of this service are
// two bindings of this struct, not two controllers.
type Pipeline struct {
	entry      string
	parse      Parser
	resolver   Resolver
	renderer   Renderer
	dispatcher dispatch.Dispatcher
	emptyMsg   string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	store      storage.NotificationStore // nil disables the audit log
}

// Config collects the pipeline bindings.
type Config struct {
	// Entry names the entry point ("events" or "relay") for logs, metrics
	// and audit rows.
	Entry      string
	Parse      Parser
	Resolver   Resolver
	Renderer   Renderer
	Dispatcher dispatch.Dispatcher
	// EmptyMessage is returned when no recipients resolve.
	EmptyMessage string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Store        storage.NotificationStore
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		entry:      cfg.Entry,
		parse:      cfg.Parse,
		resolver:   cfg.Resolver,
		renderer:   cfg.Renderer,
		dispatcher: cfg.Dispatcher,
		emptyMsg:   cfg.EmptyMessage,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		store:      cfg.Store,
	}
}

// Run executes one invocation over the raw request body.
func (p *Pipeline) Run(ctx context.Context, body []byte) (res Result) {
	invocationID := uuid.New().String()
	logger := p.logger.With(
		slog.String("entry", p.entry),
		slog.String("invocation_id", invocationID),
	)

	// Nothing may escape the pipeline boundary.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("invocation panicked", slog.Any("panic", r))
			res = Result{
				StatusCode: 500,
				Body:       map[string]string{"error": fmt.Sprintf("internal error: %v", r)},
			}
		}
	}()

	evt, err := p.parse(body)
	if err != nil {
		logger.Warn("malformed inbound event", slog.String("error", err.Error()))
		return Result{
			StatusCode: 400,
			Body:       map[string]string{"error": err.Error()},
		}
	}

	logger = logger.With(slog.String("event_type", evt.Type))
	logger.Info("event received")
	p.metrics.EventsTotal.WithLabelValues(p.entry, evt.Type).Inc()

	recipients := p.resolver.Resolve(ctx, evt)
	logger.Info("recipients resolved", slog.Int("count", len(recipients)))

	if len(recipients) == 0 {
		summary := Summary{
			InvocationID: invocationID,
			EventType:    evt.Type,
			Message:      p.emptyMsg,
		}
		p.audit(ctx, logger, evt, summary)
		return Result{StatusCode: 200, Body: summary}
	}

	msg := p.renderer(evt.Type, evt.Payload)
	out := p.dispatcher.Dispatch(ctx, evt, msg, recipients)
	p.count(out)

	summary := Summary{
		InvocationID:    invocationID,
		EventType:       evt.Type,
		RecipientsCount: len(recipients),
		Sent:            out.Sent,
		Failed:          out.Failed,
		Errors:          out.Errors,
		Relay:           out.Relay,
	}
	logger.Info("dispatch complete",
		slog.Int("recipients", len(recipients)),
		slog.Int("sent", out.Sent),
		slog.Int("failed", out.Failed),
	)
	p.audit(ctx, logger, evt, summary)

	return Result{StatusCode: 200, Body: summary}
}

// count feeds the dispatch outcome into the prometheus counters.
func (p *Pipeline) count(out dispatch.Outcome) {
	if out.Relay != nil {
		outcome := "ok"
		if out.Relay.Error != "" {
			outcome = "error"
		}
		p.metrics.RelayRequests.WithLabelValues(outcome).Inc()
		return
	}
	p.metrics.EmailsSent.Add(float64(out.Sent))
	p.metrics.EmailsFailed.Add(float64(out.Failed))
}

// audit writes the invocation outcome to the notification store when one is
// configured. Store failures are logged and never affect the result.
func (p *Pipeline) audit(ctx context.Context, logger *slog.Logger, evt event.InboundEvent, s Summary) {
	if p.store == nil {
		return
	}

	entry := storage.NotificationLogEntry{
		Entry:      p.entry,
		EventType:  evt.Type,
		Dispatcher: p.dispatcher.Name(),
		Recipients: s.RecipientsCount,
		Sent:       s.Sent,
		Failed:     s.Failed,
		Status:     auditStatus(s),
		CreatedAt:  time.Now().UTC(),
	}
	if s.Relay != nil {
		entry.ErrorMsg = s.Relay.Error
	}

	if err := p.store.LogNotification(ctx, entry); err != nil {
		logger.Warn("audit log write failed", slog.String("error", err.Error()))
	}
}

func auditStatus(s Summary) string {
	switch {
	case s.RecipientsCount == 0:
		return "no_recipients"
	case s.Failed == 0:
		return "sent"
	case s.Sent == 0:
		return "failed"
	default:
		return "partial"
	}
}
