// Package render turns a domain event into human-readable message content.
// Rendering is total: every event type, including unknown ones, produces a
// non-empty message, and every field read has an explicit default.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/shaharia-lab/matchday-notifier/internal/event"
)

// Message is the rendered content for one event. The long form carries a
// subject and a multi-line body; the short form leaves Subject empty and
// puts a single line in Body.
type Message struct {
	Subject string
	Body    string
}

// shortMessageLimit caps the free-text portion of short-form alert messages.
const shortMessageLimit = 100

// severityIcon maps an alert severity to its icon. Unknown severities get
// the generic announcement icon.
func severityIcon(severity string) string {
	switch severity {
	case "INFO":
		return "ℹ️"
	case "WARN":
		return "⚠️"
	case "CRITICAL":
		return "🚨"
	}
	return "📢"
}

// Long renders the email (subject + body) form of an event.
func Long(eventType string, p event.Payload) Message {
	switch eventType {
	case event.TypeMatchScheduled:
		return longMatchScheduled(p)
	case event.TypeGoalScored:
		return longGoalScored(p)
	case event.TypeAlertPublished:
		return longAlertPublished(p)
	}
	return longFallback(eventType, p)
}

func longMatchScheduled(p event.Payload) Message {
	teamA := p.String("teamAName", "Team A")
	teamB := p.String("teamBName", "Team B")

	body := fmt.Sprintf(`🏆 Match scheduled

%s vs %s

📅 Kickoff: %s
🏟️ Stadium: %s
📍 City: %s

Don't miss it!
`,
		teamA, teamB,
		p.String("kickoffTime", "To be confirmed"),
		p.String("stadium", "To be confirmed"),
		p.String("city", "To be confirmed"),
	)

	return Message{
		Subject: fmt.Sprintf("⚽ Match scheduled: %s vs %s", teamA, teamB),
		Body:    body,
	}
}

func longGoalScored(p event.Payload) Message {
	teamA := p.String("teamAName", "Team A")
	teamB := p.String("teamBName", "Team B")
	scoreA, scoreB := p.Score()

	body := fmt.Sprintf(`🎉 GOAL!

%s scores in minute %d!

📊 Current score:
%s %d - %d %s
`,
		p.String("player", "Unknown"),
		p.Int("minute", 0),
		teamA, scoreA, scoreB, teamB,
	)

	return Message{
		Subject: fmt.Sprintf("⚽ GOAL! %s %d-%d %s", teamA, scoreA, scoreB, teamB),
		Body:    body,
	}
}

func longAlertPublished(p event.Payload) Message {
	severity := p.String("severity", "INFO")
	category := p.String("category", "General")
	icon := severityIcon(severity)

	body := fmt.Sprintf(`%s ALERT - %s

Severity: %s
Scope: %s - %s

Message:
%s
`,
		icon, category,
		severity,
		p.String("scopeType", "General"), p.String("scopeId", "All zones"),
		p.String("message", "No details available"),
	)

	return Message{
		Subject: fmt.Sprintf("%s Alert: %s", icon, category),
		Body:    body,
	}
}

// longFallback echoes the raw event type and a pretty-printed payload dump
// so that an unrecognized event still yields a useful notification.
func longFallback(eventType string, p event.Payload) Message {
	dump, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		dump = []byte("{}")
	}
	return Message{
		Subject: fmt.Sprintf("Notification: %s", eventType),
		Body:    fmt.Sprintf("Event: %s\n\nDetails:\n%s\n", eventType, dump),
	}
}

// Short renders the single-line, channel-agnostic form of an event, used
// for the SMS relay path.
func Short(eventType string, p event.Payload) Message {
	return Message{Body: shortLine(eventType, p)}
}

func shortLine(eventType string, p event.Payload) string {
	switch eventType {
	case event.TypeGoalScored:
		scoreA, scoreB := p.Score()
		return fmt.Sprintf("⚽ %d' %s scores! %s %d-%d %s",
			p.Int("minute", 0),
			p.String("player", "Unknown"),
			p.String("teamAName", "Team A"), scoreA, scoreB, p.String("teamBName", "Team B"),
		)
	case event.TypeMatchScheduled:
		return fmt.Sprintf("⚽ %s vs %s on %s at %s",
			p.String("teamAName", "Team A"),
			p.String("teamBName", "Team B"),
			p.String("kickoffTime", "TBC"),
			p.String("stadium", "TBC"),
		)
	case event.TypeMatchEnded:
		scoreA, scoreB := p.Score()
		return fmt.Sprintf("🏁 Full time: %s %d-%d %s",
			p.String("teamAName", "Team A"), scoreA, scoreB, p.String("teamBName", "Team B"),
		)
	case event.TypeAlertPublished:
		return fmt.Sprintf("%s %s: %s",
			severityIcon(p.String("severity", "")),
			p.String("category", "Alert"),
			truncate(p.String("message", "No details available"), shortMessageLimit),
		)
	}
	return fmt.Sprintf("📢 %s", eventType)
}

// truncate shortens s to at most limit characters, rune-safe.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
