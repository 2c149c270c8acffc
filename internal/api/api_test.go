package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/matchday-notifier/internal/api"
	"github.com/shaharia-lab/matchday-notifier/internal/directory"
	"github.com/shaharia-lab/matchday-notifier/internal/dispatch"
	"github.com/shaharia-lab/matchday-notifier/internal/event"
	"github.com/shaharia-lab/matchday-notifier/internal/metrics"
	"github.com/shaharia-lab/matchday-notifier/internal/pipeline"
	"github.com/shaharia-lab/matchday-notifier/internal/render"
	"github.com/shaharia-lab/matchday-notifier/internal/storage"
)

// stubResolver returns a fixed recipient batch.
type stubResolver struct {
	recipients []directory.Recipient
}

func (s stubResolver) Resolve(context.Context, event.InboundEvent) []directory.Recipient {
	return s.recipients
}

// stubDispatcher returns a fixed outcome.
type stubDispatcher struct {
	name    string
	outcome dispatch.Outcome
}

func (s *stubDispatcher) Name() string { return s.name }

func (s *stubDispatcher) Dispatch(context.Context, event.InboundEvent, render.Message, []directory.Recipient) dispatch.Outcome {
	return s.outcome
}

// memStore is an in-memory NotificationStore.
type memStore struct {
	entries []storage.NotificationLogEntry
	err     error
}

func (m *memStore) LogNotification(_ context.Context, e storage.NotificationLogEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memStore) ListNotifications(context.Context, int) ([]storage.NotificationLogEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

// testHarness bundles the stubs and router used by every test.
type testHarness struct {
	emailDispatcher *stubDispatcher
	relayDispatcher *stubDispatcher
	store           *memStore
	router          chi.Router
}

func newHarness(t *testing.T, recipients []directory.Recipient) *testHarness {
	t.Helper()

	h := &testHarness{
		emailDispatcher: &stubDispatcher{name: "email", outcome: dispatch.Outcome{Sent: len(recipients)}},
		relayDispatcher: &stubDispatcher{name: "relay", outcome: dispatch.Outcome{Relay: &dispatch.RelayResult{Status: 200}}},
		store:           &memStore{},
	}

	logger := slog.Default()
	m := metrics.New(prometheus.NewRegistry())

	eventsPipeline := pipeline.New(pipeline.Config{
		Entry:        "events",
		Parse:        event.ParseEnvelope,
		Resolver:     stubResolver{recipients: recipients},
		Renderer:     render.Long,
		Dispatcher:   h.emailDispatcher,
		EmptyMessage: "No recipients found",
		Logger:       logger,
		Metrics:      m,
		Store:        h.store,
	})
	relayPipeline := pipeline.New(pipeline.Config{
		Entry:        "relay",
		Parse:        event.ParseDirect,
		Resolver:     pipeline.PayloadResolver{},
		Renderer:     render.Short,
		Dispatcher:   h.relayDispatcher,
		EmptyMessage: "No recipients to notify",
		Logger:       logger,
		Metrics:      m,
		Store:        h.store,
	})

	srv := api.New(eventsPipeline, relayPipeline, h.store, logger)
	r := chi.NewRouter()
	srv.Mount(r)
	h.router = r
	return h
}

func (h *testHarness) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// ---------- /events ----------

func TestEvents(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		recipients []directory.Recipient
		wantStatus int
		wantInBody string
	}{
		{
			name:       "dispatch summary",
			body:       `{"detail-type":"goal.scored","detail":{"matchId":"m1"}}`,
			recipients: []directory.Recipient{{Email: "a@example.com"}},
			wantStatus: http.StatusOK,
			wantInBody: `"event_type":"goal.scored"`,
		},
		{
			name:       "zero recipients still succeeds",
			body:       `{"detail-type":"goal.scored","detail":{"matchId":"m1"}}`,
			wantStatus: http.StatusOK,
			wantInBody: "No recipients found",
		},
		{
			name:       "malformed body",
			body:       `{broken`,
			wantStatus: http.StatusBadRequest,
			wantInBody: `"error"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.recipients)
			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			w := h.do(req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantInBody)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

// ---------- /relay ----------

func TestRelay(t *testing.T) {
	h := newHarness(t, nil)

	body := `{"type":"goal.scored","matchId":"m1","recipients":[{"phone":"+212600000001"}]}`
	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(body))
	w := h.do(req)

	require.Equal(t, http.StatusOK, w.Code)

	var summary pipeline.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "goal.scored", summary.EventType)
	require.NotNil(t, summary.Relay)
	assert.Equal(t, 200, summary.Relay.Status)
}

func TestRelay_MalformedBodyReturns400(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(`not json at all`))
	w := h.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestRelay_ZeroRecipients(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(`{"type":"goal.scored"}`))
	w := h.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No recipients to notify")
}

func TestRelay_CORSHeaders(t *testing.T) {
	h := newHarness(t, nil)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/relay", nil)
		req.Header.Set("Origin", "http://fans.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := h.do(req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("actual request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/relay", strings.NewReader(`{"type":"x"}`))
		req.Header.Set("Origin", "http://fans.example.com")
		w := h.do(req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("events endpoint has no CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"detail-type":"x"}`))
		req.Header.Set("Origin", "http://fans.example.com")
		w := h.do(req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

// ---------- /notifications ----------

func TestListNotifications(t *testing.T) {
	h := newHarness(t, []directory.Recipient{{Email: "a@example.com"}})

	// Run one invocation so the store has an entry.
	req := httptest.NewRequest(http.MethodPost, "/events",
		strings.NewReader(`{"detail-type":"goal.scored","detail":{"matchId":"m1"}}`))
	require.Equal(t, http.StatusOK, h.do(req).Code)

	w := h.do(httptest.NewRequest(http.MethodGet, "/notifications", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Notifications []storage.NotificationLogEntry `json:"notifications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "goal.scored", body.Notifications[0].EventType)
	assert.Equal(t, "email", body.Notifications[0].Dispatcher)
}

func TestListNotifications_StoreError(t *testing.T) {
	h := newHarness(t, nil)
	h.store.err = assert.AnError

	w := h.do(httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
