package server

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/karantza/scrumpoker/internal/domain"
)

const wsWriteDeadline = 5 * time.Second

// wsEnvelope frames an event for the WebSocket transport the same way
// SSE does: a kind label plus the kind-specific payload.
type wsEnvelope struct {
	Event domain.EventKind `json:"event"`
	Data  domain.Event     `json:"data"`
}

// wsSink serializes events onto a WebSocket connection. A mutex guards
// the connection: keepalives and relayed events come from the session
// goroutine, but close frames may race with it during teardown.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSink) Send(ev domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return s.conn.WriteJSON(wsEnvelope{Event: ev.Kind(), Data: ev})
}

// handleRoomWebSocket serves the room stream over a WebSocket for
// clients that cannot use SSE. The stream stays one-way: inbound
// messages are discarded, and the read loop exists only to detect the
// peer closing the connection.
func (s *Server) handleRoomWebSocket(c echo.Context) error {
	participantID, displayName, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	roomID := c.Param("room")

	release, err := s.acquireStreamSlot(c)
	if err != nil {
		return err
	}
	defer release()

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	return s.app.OpenRoomStream(ctx, roomID, participantID, displayName, &wsSink{conn: conn})
}
