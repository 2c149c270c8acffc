package directory_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
)

func matchEvent(matchID string) event.InboundEvent {
	return event.InboundEvent{
		Type:    event.TypeGoalScored,
		Payload: event.Payload{"matchId": matchID},
	}
}

func TestResolve_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipients/m1/recipients", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"recipients":[{"email":"fan@example.com","id":"f1"},{"phone":"+212600000001"}]}`))
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, time.Second, slog.Default())
	recipients := c.Resolve(context.Background(), matchEvent("m1"))

	require.Len(t, recipients, 2)
	assert.Equal(t, "fan@example.com", recipients[0].Email)
	assert.Equal(t, "+212600000001", recipients[1].Phone)
}

func TestResolve_AlertURL(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"recipients":[]}`))
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, time.Second, slog.Default())
	c.Resolve(context.Background(), event.InboundEvent{
		Type:    event.TypeAlertPublished,
		Payload: event.Payload{"alertId": "a7"},
	})

	assert.Equal(t, "/recipients/alerts/a7/recipients", gotPath)
}

func TestResolve_UnknownTypeSkipsLookup(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, time.Second, slog.Default())
	recipients := c.Resolve(context.Background(), event.InboundEvent{Type: "something.else"})

	assert.Empty(t, recipients)
	assert.False(t, called, "no directory call for uncovered event types")
}

func TestResolve_Non2xxDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, time.Second, slog.Default())
	assert.Empty(t, c.Resolve(context.Background(), matchEvent("m1")))
}

func TestResolve_MalformedJSONDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"recipients": not-json`))
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, time.Second, slog.Default())
	assert.Empty(t, c.Resolve(context.Background(), matchEvent("m1")))
}

func TestResolve_TimeoutDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"recipients":[]}`))
	}))
	defer srv.Close()

	c := directory.NewClient(srv.URL, 20*time.Millisecond, slog.Default())
	assert.Empty(t, c.Resolve(context.Background(), matchEvent("m1")))
}

func TestResolve_ConnectionRefusedDegradesToEmpty(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := directory.NewClient(url, time.Second, slog.Default())
	assert.Empty(t, c.Resolve(context.Background(), matchEvent("m1")))
}
