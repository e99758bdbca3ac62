package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/karantza/scrumpoker/internal/domain"
	"github.com/karantza/scrumpoker/internal/logging"
	"github.com/karantza/scrumpoker/internal/metrics"
	"github.com/karantza/scrumpoker/internal/room"
)

// EventSink delivers events to the remote peer. A Send error means the
// peer is unreachable; the session treats it as a normal disconnect,
// not a fault.
type EventSink interface {
	Send(ev domain.Event) error
}

// Config holds the session timing policy. Durations are fixed at
// startup from the service configuration.
type Config struct {
	// KeepaliveInterval bounds the wait for the next room event; on
	// expiry a synthetic keepalive is emitted instead of closing.
	KeepaliveInterval time.Duration

	// LivenessTimeout terminates a room stream when the participant's
	// last-seen timestamp is older than this. Advanced only by explicit
	// liveness signals from the peer, never by event delivery.
	LivenessTimeout time.Duration

	// IndexKeepaliveInterval, when positive, applies the same keepalive
	// cadence to index streams. Zero means index streams block without
	// keepalives, matching the room-listing view's lower value.
	IndexKeepaliveInterval time.Duration
}

// Streamer opens stream sessions against the room registry and index.
type Streamer struct {
	registry *room.Registry
	index    *room.Index
	clock    clockwork.Clock
	cfg      Config
}

// NewStreamer creates a Streamer with the given timing policy.
func NewStreamer(registry *room.Registry, index *room.Index, clock clockwork.Clock, cfg Config) *Streamer {
	return &Streamer{registry: registry, index: index, clock: clock, cfg: cfg}
}

// ServeRoom runs one room stream session until the context is
// cancelled, the peer vanishes, the subscription is dropped, or the
// participant's liveness expires. The room is created on first
// reference and the participant auto-joined with displayName.
//
// The subscription is taken before the join so this connection's own
// join event arrives live; the pre-join snapshot covers everyone
// already present. Cleanup (unsubscribe, stream refcount decrement and
// possible departure) runs exactly once on every exit path.
func (s *Streamer) ServeRoom(ctx context.Context, roomID, participantID, displayName string, sink EventSink) error {
	r := s.registry.GetOrCreate(roomID)

	sub := r.Subscribe()
	revealed, participants := r.Snapshot()

	r.Join(participantID, displayName)
	if err := r.AddStream(participantID, s.clock.Now()); err != nil {
		sub.Close()
		return fmt.Errorf("adding stream for %s in room %s: %w", participantID, roomID, err)
	}

	metrics.StreamsOpenedTotal.WithLabelValues("room").Inc()
	metrics.StreamsCurrent.WithLabelValues("room").Inc()
	defer func() {
		sub.Close()
		r.RemoveStream(participantID, s.clock.Now())
		metrics.StreamsCurrent.WithLabelValues("room").Dec()
	}()

	// Full state replay so a (re)connecting client reconstructs the
	// room without a separate state call.
	if err := sink.Send(domain.IdentityEvent{User: participantID, Name: displayName}); err != nil {
		return nil
	}
	if err := sink.Send(domain.RevealedEvent{Revealed: revealed}); err != nil {
		return nil
	}
	for _, p := range participants {
		if err := sink.Send(domain.JoinEvent{User: p.ID, Name: p.DisplayName}); err != nil {
			return nil
		}
		if err := sink.Send(domain.VoteEvent{User: p.ID, Vote: p.CurrentVote}); err != nil {
			return nil
		}
	}

	seq := 0
	for {
		timer := s.clock.NewTimer(s.cfg.KeepaliveInterval)

		select {
		case ev, ok := <-sub.Events():
			timer.Stop()
			if !ok {
				// Dropped by the broadcaster for falling behind.
				logging.WithRoom(roomID).Warn("room stream dropped as slow subscriber", "user", participantID)
				return nil
			}
			if err := sink.Send(ev); err != nil {
				return nil
			}

		case <-ctx.Done():
			timer.Stop()
			return nil

		case <-timer.Chan():
			lastSeen, ok := r.LastSeen(participantID)
			if !ok {
				// Another connection's teardown removed the participant.
				return nil
			}
			if s.clock.Now().Sub(lastSeen) > s.cfg.LivenessTimeout {
				metrics.LivenessExpiriesTotal.Inc()
				logging.WithRoom(roomID).Info("room stream liveness expired", "user", participantID)
				return nil
			}
			seq++
			if err := sink.Send(domain.KeepaliveEvent{Seq: seq}); err != nil {
				return nil
			}
			metrics.KeepalivesSentTotal.Inc()
		}
	}
}

// ServeIndex runs one index stream session: a room-summary snapshot per
// known room, then live updates until the context is cancelled or the
// peer vanishes. Index streams have no liveness requirement; keepalives
// are optional and off by default.
func (s *Streamer) ServeIndex(ctx context.Context, sink EventSink) error {
	sub := s.index.Subscribe()

	metrics.StreamsOpenedTotal.WithLabelValues("index").Inc()
	metrics.StreamsCurrent.WithLabelValues("index").Inc()
	defer func() {
		sub.Close()
		metrics.StreamsCurrent.WithLabelValues("index").Dec()
	}()

	for _, summary := range s.registry.Summaries() {
		if err := sink.Send(summary); err != nil {
			return nil
		}
	}

	seq := 0
	for {
		var timerCh <-chan time.Time
		var timer clockwork.Timer
		if s.cfg.IndexKeepaliveInterval > 0 {
			timer = s.clock.NewTimer(s.cfg.IndexKeepaliveInterval)
			timerCh = timer.Chan()
		}

		select {
		case ev, ok := <-sub.Events():
			if timer != nil {
				timer.Stop()
			}
			if !ok {
				slog.Warn("index stream dropped as slow subscriber")
				return nil
			}
			if err := sink.Send(ev); err != nil {
				return nil
			}

		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerCh:
			seq++
			if err := sink.Send(domain.KeepaliveEvent{Seq: seq}); err != nil {
				return nil
			}
			metrics.KeepalivesSentTotal.Inc()
		}
	}
}
