package server

import (
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/karantza/scrumpoker/internal/domain"
	apperrors "github.com/karantza/scrumpoker/internal/errors"
	"github.com/karantza/scrumpoker/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(200, map[string]any{"status": "ok", "build": version.Get()})
}

type voteRequest struct {
	Value    float64 `json:"value"`
	Emphasis bool    `json:"emphasis"`
}

func (s *Server) handleVote(c echo.Context) error {
	participantID, _, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	roomID := c.Param("room")

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid vote payload")
	}
	if req.Value < 0 {
		return apperrors.ValidationError("vote value must not be negative").WithField("value", req.Value)
	}

	vote := domain.Vote{Value: req.Value, Emphasis: req.Emphasis}
	if err := s.app.SubmitVote(roomID, participantID, vote); err != nil {
		return mapDomainError(err, roomID, participantID)
	}

	slog.Debug("vote recorded", "room", roomID, "user", participantID, "value", req.Value)
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleReveal(c echo.Context) error {
	participantID, _, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	roomID := c.Param("room")

	if err := s.app.Reveal(roomID, participantID); err != nil {
		return mapDomainError(err, roomID, participantID)
	}

	slog.Info("room revealed", "room", roomID, "user", participantID)
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleReset(c echo.Context) error {
	participantID, _, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	roomID := c.Param("room")

	if err := s.app.Reset(roomID, participantID); err != nil {
		return mapDomainError(err, roomID, participantID)
	}

	slog.Info("room reset", "room", roomID, "user", participantID)
	return c.JSON(200, map[string]string{"status": "ok"})
}

func (s *Server) handleKeepalive(c echo.Context) error {
	participantID, _, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	roomID := c.Param("room")

	// The server's clock is authoritative: the signal's arrival is the
	// liveness fact, not whatever timestamp the peer claims.
	if err := s.app.RecordLiveness(roomID, participantID, s.clock.Now()); err != nil {
		return mapDomainError(err, roomID, participantID)
	}
	return c.JSON(200, map[string]string{"status": "ok"})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleGetName(c echo.Context) error {
	_, displayName, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(200, map[string]string{"name": displayName})
}

func (s *Server) handleSetName(c echo.Context) error {
	participantID, _, err := s.ensureIdentity(c)
	if err != nil {
		return err
	}

	var req nameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid name payload")
	}
	if req.Name == "" {
		req.Name = "Anonymous"
	}

	if err := s.setSessionName(c, req.Name); err != nil {
		return err
	}
	s.app.SetDisplayName(participantID, req.Name)

	slog.Info("display name changed", "user", participantID, "name", req.Name)
	return c.JSON(200, map[string]string{"status": "ok"})
}

// mapDomainError translates core sentinel errors into structured HTTP
// errors; anything else is an internal fault.
func mapDomainError(err error, roomID, participantID string) error {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return apperrors.NotFoundError("room not found").WithField("room", roomID)
	case errors.Is(err, domain.ErrNotInRoom):
		return apperrors.ValidationError("participant not in room").
			WithField("room", roomID).
			WithField("user", participantID)
	default:
		return apperrors.InternalError("room operation failed", err).WithField("room", roomID)
	}
}
