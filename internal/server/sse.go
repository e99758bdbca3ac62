package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/karantza/scrumpoker/internal/domain"
	apperrors "github.com/karantza/scrumpoker/internal/errors"
	"github.com/karantza/scrumpoker/internal/metrics"
)

// sseSink writes events in Server-Sent Events framing, flushing after
// each event so the peer sees it immediately.
type sseSink struct {
	response *echo.Response
}

func (s *sseSink) Send(ev domain.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling %s event: %w", ev.Kind(), err)
	}
	if _, err := fmt.Fprintf(s.response, "event: %s\ndata: %s\n\n", ev.Kind(), data); err != nil {
		return err
	}
	s.response.Flush()
	return nil
}

// acquireStreamSlot applies the global capacity and per-IP rate limits.
// The returned release func must be called when the stream ends.
func (s *Server) acquireStreamSlot(c echo.Context) (release func(), err error) {
	if !s.streamRate.Allow(c.RealIP()) {
		metrics.StreamOpensRejectedTotal.WithLabelValues("rate").Inc()
		return nil, apperrors.TooManyRequestsError("too many stream opens").WithField("ip", c.RealIP())
	}
	if !s.streamLimit.Acquire() {
		metrics.StreamOpensRejectedTotal.WithLabelValues("capacity").Inc()
		return nil, apperrors.TooManyRequestsError("stream capacity reached")
	}
	return s.streamLimit.Release, nil
}

func writeSSEHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

func (s *Server) handleRoomStream(c echo.Context) error {
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

	writeSSEHeaders(c)

	// The request context is cancelled when the peer disconnects; that
	// is the session's sole cancellation signal.
	return s.app.OpenRoomStream(c.Request().Context(), roomID, participantID, displayName, &sseSink{response: c.Response()})
}

func (s *Server) handleIndexStream(c echo.Context) error {
	if _, _, err := s.ensureIdentity(c); err != nil {
		return err
	}

	release, err := s.acquireStreamSlot(c)
	if err != nil {
		return err
	}
	defer release()

	writeSSEHeaders(c)

	return s.app.OpenIndexStream(c.Request().Context(), &sseSink{response: c.Response()})
}
