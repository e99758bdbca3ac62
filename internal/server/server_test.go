package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/karantza/scrumpoker/internal/app"
	"github.com/karantza/scrumpoker/internal/config"
	"github.com/karantza/scrumpoker/internal/room"
	"github.com/karantza/scrumpoker/internal/stream"
)

// testServer wires a full server against an in-memory core with a fake
// clock. The fake clock keeps keepalive timers quiet so stream tests
// only see real events.
type testServer struct {
	server   *Server
	registry *room.Registry
	clock    *clockwork.FakeClock
	http     *httptest.Server
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppEnv:               "test",
		Port:                 "0",
		StaticDir:            t.TempDir(),
		SessionSecret:        "test-secret",
		KeepaliveInterval:    time.Second,
		LivenessTimeout:      60 * time.Second,
		MaxConcurrentStreams: 100,
		StreamOpensPerSecond: 1000,
		StreamOpenBurst:      1000,
	}
	if mutate != nil {
		mutate(cfg)
	}

	clock := clockwork.NewFakeClock()
	index := room.NewIndex()
	registry := room.NewRegistry(index, clock)
	streamer := stream.NewStreamer(registry, index, clock, stream.Config{
		KeepaliveInterval:      cfg.KeepaliveInterval,
		LivenessTimeout:        cfg.LivenessTimeout,
		IndexKeepaliveInterval: cfg.IndexKeepaliveInterval,
	})
	svc := app.NewService(registry, streamer)
	srv := NewServer(cfg, svc, clock)

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	return &testServer{server: srv, registry: registry, clock: clock, http: ts}
}

// mintIdentity forges a session cookie for a known participant id so
// tests can act as a specific client.
func mintIdentity(t *testing.T, s *Server, participantID, displayName string) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	session, _ := s.sessionStore.Get(req, sessionName)
	session.Values[sessionKeyID] = participantID
	session.Values[sessionKeyName] = displayName
	require.NoError(t, session.Save(req, rec))

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
