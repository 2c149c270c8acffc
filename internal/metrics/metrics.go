// Package metrics exposes prometheus counters for the dispatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline counters. All counters are registered once
// at startup on the provided registry.
type Metrics struct {
	EventsTotal   *prometheus.CounterVec
	EmailsSent    prometheus.Counter
	EmailsFailed  prometheus.Counter
	RelayRequests *prometheus.CounterVec
}

// New creates and registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_events_total",
			Help: "Inbound events processed, by entry point and event type.",
		}, []string{"entry", "type"}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifier_emails_sent_total",
			Help: "Emails successfully handed to the delivery provider.",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "notifier_emails_failed_total",
			Help: "Email sends rejected or failed.",
		}),
		RelayRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_relay_requests_total",
			Help: "Relay posts to the notify service, by outcome.",
		}, []string{"outcome"}),
	}
}
