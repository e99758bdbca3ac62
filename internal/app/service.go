package app

import (
	"context"
	"time"

	"github.com/karantza/scrumpoker/internal/domain"
	"github.com/karantza/scrumpoker/internal/room"
	"github.com/karantza/scrumpoker/internal/stream"
)

// Service exposes the core operations, one per user-facing action.
// Mutations are atomic with respect to the room they target: the state
// update and its broadcast happen together under the room's lock.
type Service struct {
	registry *room.Registry
	streamer *stream.Streamer
}

// NewService creates the application layer service.
func NewService(registry *room.Registry, streamer *stream.Streamer) *Service {
	return &Service{registry: registry, streamer: streamer}
}

// OpenRoomStream runs a room stream session until ctx is cancelled or
// the session terminates itself (liveness expiry, slow-subscriber drop,
// peer disconnect). Creates the room and auto-joins the participant.
func (s *Service) OpenRoomStream(ctx context.Context, roomID, participantID, displayName string, sink stream.EventSink) error {
	return s.streamer.ServeRoom(ctx, roomID, participantID, displayName, sink)
}

// OpenIndexStream runs an index stream session until ctx is cancelled.
func (s *Service) OpenIndexStream(ctx context.Context, sink stream.EventSink) error {
	return s.streamer.ServeIndex(ctx, sink)
}

// RecordLiveness advances the participant's last-seen timestamp in the
// room. The room must already exist: a liveness signal never implies
// creation.
func (s *Service) RecordLiveness(roomID, participantID string, at time.Time) error {
	r, err := s.registry.Get(roomID)
	if err != nil {
		return err
	}
	return r.RecordLiveness(participantID, at)
}

// SubmitVote records the participant's vote and broadcasts it.
func (s *Service) SubmitVote(roomID, participantID string, vote domain.Vote) error {
	r, err := s.registry.Get(roomID)
	if err != nil {
		return err
	}
	return r.RecordVote(participantID, vote)
}

// Reveal marks the room's votes as visible. Only members may reveal.
func (s *Service) Reveal(roomID, participantID string) error {
	r, err := s.registry.Get(roomID)
	if err != nil {
		return err
	}
	if !r.Contains(participantID) {
		return domain.ErrNotInRoom
	}
	r.Reveal()
	return nil
}

// Reset conceals the room and clears all votes. Only members may reset.
func (s *Service) Reset(roomID, participantID string) error {
	r, err := s.registry.Get(roomID)
	if err != nil {
		return err
	}
	if !r.Contains(participantID) {
		return domain.ErrNotInRoom
	}
	r.Reset()
	return nil
}

// SetDisplayName applies a rename across every room the participant is
// currently a member of. A client in zero rooms renames successfully
// with no visible effect.
func (s *Service) SetDisplayName(participantID, newName string) {
	s.registry.RenameEverywhere(participantID, newName)
}
