// Package event defines the inbound domain event envelope and a typed
// accessor layer over its schema-less payload. Payloads arrive as arbitrary
// JSON objects; every field access goes through an accessor with an explicit
// default so that a missing or oddly typed field can never fail an
// invocation.
package event

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Well-known event types. Any other value falls through to the generic
// rendering path and resolves to no recipients.
const (
	TypeMatchScheduled = "match.scheduled"
	TypeGoalScored     = "goal.scored"
	TypeMatchEnded     = "match.ended"
	TypeAlertPublished = "alert.published"
)

// InboundEvent is one domain event, immutable for the duration of an
// invocation.
type InboundEvent struct {
	Type    string
	Payload Payload
}

// Payload is the semi-structured event detail.
type Payload map[string]any

// String returns the string value at key, or def when the key is absent or
// not a string.
func (p Payload) String(key, def string) string {
	if v, ok := p[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns the integer value at key, or def when the key is absent or
// not numeric. JSON numbers decode as float64; numeric strings are also
// accepted.
func (p Payload) Int(key string, def int) int {
	return toInt(p[key], def)
}

// Score returns the (teamA, teamB) sides of the "score" sub-object.
// Each side tolerates a long and a short key spelling and defaults to 0.
func (p Payload) Score() (int, int) {
	score, ok := p["score"].(map[string]any)
	if !ok {
		return 0, 0
	}
	return sideValue(score, "teamA", "a"), sideValue(score, "teamB", "b")
}

func sideValue(score map[string]any, longKey, shortKey string) int {
	if v, ok := score[longKey]; ok {
		return toInt(v, 0)
	}
	return toInt(score[shortKey], 0)
}

func toInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// envelope is the EventBridge-style wrapper carried by the events entry.
type envelope struct {
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}

// ParseEnvelope decodes an event envelope: {"detail-type": string,
// "detail": object}. The detail may itself be a JSON-encoded string, in
// which case it is decoded a second time.
func ParseEnvelope(body []byte) (InboundEvent, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return InboundEvent{}, fmt.Errorf("decoding event envelope: %w", err)
	}

	payload := Payload{}
	if len(env.Detail) > 0 {
		raw := env.Detail
		// Double-encoded detail: unwrap the string first.
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = []byte(s)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return InboundEvent{}, fmt.Errorf("decoding event detail: %w", err)
		}
	}

	return InboundEvent{Type: env.DetailType, Payload: payload}, nil
}

// ParseDirect decodes a flat request body where the event type and all
// detail fields live at the top level. The whole body may arrive as a
// JSON-encoded string.
func ParseDirect(body []byte) (InboundEvent, error) {
	raw := body
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(s)
	}

	payload := Payload{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return InboundEvent{}, fmt.Errorf("decoding request body: %w", err)
	}

	return InboundEvent{Type: payload.String("type", ""), Payload: payload}, nil
}
