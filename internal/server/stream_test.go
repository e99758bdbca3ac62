package server

import (
	"bufio"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karantza/scrumpoker/internal/config"
	"github.com/karantza/scrumpoker/internal/domain"
)

type sseFrame struct {
	event string
	data  string
}

// readSSEFrames parses count frames off an open event-stream response.
func readSSEFrames(t *testing.T, r *bufio.Reader, count int) []sseFrame {
	t.Helper()

	frames := make([]sseFrame, 0, count)
	var current sseFrame
	for len(frames) < count {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			current.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "":
			frames = append(frames, current)
			current = sseFrame{}
		}
	}
	return frames
}

func openSSE(t *testing.T, ts *testServer, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.http.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRoomStream_SSEWireFormat(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	resp := openSSE(t, ts, "/r/ABC123/stream", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	frames := readSSEFrames(t, bufio.NewReader(resp.Body), 3)

	require.Equal(t, "identity-assigned", frames[0].event)
	var identity domain.IdentityEvent
	require.NoError(t, json.Unmarshal([]byte(frames[0].data), &identity))
	assert.Equal(t, "p1", identity.User)
	assert.Equal(t, "Alice", identity.Name)

	require.Equal(t, "revealed", frames[1].event)
	var revealed domain.RevealedEvent
	require.NoError(t, json.Unmarshal([]byte(frames[1].data), &revealed))
	assert.False(t, revealed.Revealed)

	require.Equal(t, "join", frames[2].event)
	var join domain.JoinEvent
	require.NoError(t, json.Unmarshal([]byte(frames[2].data), &join))
	assert.Equal(t, "p1", join.User)
	assert.Equal(t, "Alice", join.Name)
}

func TestRoomStream_RelaysMutations(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	resp := openSSE(t, ts, "/r/ABC123/stream", cookie)
	reader := bufio.NewReader(resp.Body)
	readSSEFrames(t, reader, 3) // identity, revealed, own join

	rec := doJSON(ts, http.MethodPost, "/r/ABC123/vote", `{"value":3}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	frames := readSSEFrames(t, reader, 1)
	require.Equal(t, "vote", frames[0].event)
	var vote domain.VoteEvent
	require.NoError(t, json.Unmarshal([]byte(frames[0].data), &vote))
	assert.Equal(t, "p1", vote.User)
	require.NotNil(t, vote.Vote)
	assert.Equal(t, float64(3), vote.Vote.Value)
}

func TestIndexStream_SnapshotThenLive(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.registry.GetOrCreate("existing").Join("p9", "Zoe")
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	resp := openSSE(t, ts, "/stream", cookie)
	reader := bufio.NewReader(resp.Body)

	frames := readSSEFrames(t, reader, 1)
	require.Equal(t, "room-summary", frames[0].event)
	var summary domain.RoomSummaryEvent
	require.NoError(t, json.Unmarshal([]byte(frames[0].data), &summary))
	assert.Equal(t, "existing", summary.ID)
	assert.Equal(t, []string{"Zoe"}, summary.Users)

	ts.registry.GetOrCreate("fresh")

	frames = readSSEFrames(t, reader, 1)
	require.Equal(t, "room-summary", frames[0].event)
	require.NoError(t, json.Unmarshal([]byte(frames[0].data), &summary))
	assert.Equal(t, "fresh", summary.ID)
	assert.Empty(t, summary.Users)
}

func TestRoomStream_CapacityRejectedWith429(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.MaxConcurrentStreams = 0
	})
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	resp := openSSE(t, ts, "/r/ABC123/stream", cookie)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestRoomWebSocket_DeliversEnvelopes(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	wsURL := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws/r/ABC123"
	header := http.Header{}
	header.Add("Cookie", cookie.String())

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	type envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}

	readEnvelope := func() envelope {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var env envelope
		require.NoError(t, conn.ReadJSON(&env))
		return env
	}

	env := readEnvelope()
	require.Equal(t, "identity-assigned", env.Event)
	var identity domain.IdentityEvent
	require.NoError(t, json.Unmarshal(env.Data, &identity))
	assert.Equal(t, "p1", identity.User)

	env = readEnvelope()
	require.Equal(t, "revealed", env.Event)

	env = readEnvelope()
	require.Equal(t, "join", env.Event)
	var join domain.JoinEvent
	require.NoError(t, json.Unmarshal(env.Data, &join))
	assert.Equal(t, "Alice", join.Name)
}

func TestRoomStream_DisconnectRemovesParticipant(t *testing.T) {
	ts := newTestServer(t, nil)
	cookie := mintIdentity(t, ts.server, "p1", "Alice")

	resp := openSSE(t, ts, "/r/ABC123/stream", cookie)
	reader := bufio.NewReader(resp.Body)
	readSSEFrames(t, reader, 3)

	r, err := ts.registry.Get("ABC123")
	require.NoError(t, err)
	require.True(t, r.Contains("p1"))

	resp.Body.Close()

	require.Eventually(t, func() bool {
		return !r.Contains("p1")
	}, 2*time.Second, 10*time.Millisecond)
}
