package storage

import (
	"context"
	"time"
)

// NotificationLogEntry records the outcome of one dispatch invocation.
// The log is advisory: it never drives control flow.
type NotificationLogEntry struct {
	ID         int64     `json:"id"`
	Entry      string    `json:"entry"` // "events" or "relay"
	EventType  string    `json:"event_type"`
	Dispatcher string    `json:"dispatcher"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Status     string    `json:"status"`
	ErrorMsg   string    `json:"error_msg"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationStore defines the interface for persisting dispatch logs.
type NotificationStore interface {
	// LogNotification records one dispatch invocation.
	LogNotification(ctx context.Context, entry NotificationLogEntry) error
	// ListNotifications returns the most recent log entries, up to limit.
	ListNotifications(ctx context.Context, limit int) ([]NotificationLogEntry, error)
}
