package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/karantza/scrumpoker/internal/broadcast"
	"github.com/karantza/scrumpoker/internal/domain"
	"github.com/karantza/scrumpoker/internal/metrics"
)

// Room is a shared voting session. All mutation of the participant map
// and reveal flag is serialized by the room's own mutex, so independent
// rooms never contend. State changes and their broadcasts happen under
// the same lock: a subscriber's queue sees events in mutation order.
type Room struct {
	id     string
	notify func(domain.RoomSummaryEvent)

	mu           sync.Mutex
	participants map[string]*domain.Participant
	order        []string // join order
	revealed     bool
	emptySince   time.Time

	broadcaster *broadcast.Broadcaster
}

// New creates an empty, concealed room. notify is invoked with a fresh
// summary after every membership or name change; the registry wires it
// to the index broadcaster.
func New(id string, now time.Time, notify func(domain.RoomSummaryEvent)) *Room {
	if notify == nil {
		notify = func(domain.RoomSummaryEvent) {}
	}
	return &Room{
		id:           id,
		notify:       notify,
		participants: make(map[string]*domain.Participant),
		emptySince:   now,
		broadcaster:  broadcast.New(),
	}
}

// ID returns the room code.
func (r *Room) ID() string { return r.id }

// Subscribe registers a new subscriber on the room's broadcaster.
func (r *Room) Subscribe() *broadcast.Subscription {
	return r.broadcaster.Subscribe()
}

// Join adds the participant to the room. A no-op if already joined.
func (r *Room) Join(participantID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[participantID]; ok {
		return
	}

	r.participants[participantID] = &domain.Participant{
		ID:          participantID,
		DisplayName: displayName,
	}
	r.order = append(r.order, participantID)
	metrics.ParticipantsCurrent.Inc()

	r.broadcaster.Publish(domain.JoinEvent{User: participantID, Name: displayName})
	r.notify(r.summaryLocked())
	slog.Info("participant joined", "room", r.id, "user", participantID)
}

// AddStream records one more open connection for the participant and
// refreshes their last-seen timestamp.
func (r *Room) AddStream(participantID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return domain.ErrNotInRoom
	}
	p.OpenStreams++
	p.LastSeen = now
	return nil
}

// RemoveStream records a closed connection. When the participant's last
// stream closes they leave the room: removed from the map, a part event
// published, the index notified. Calling this for a non-member is a
// no-op producing no events.
func (r *Room) RemoveStream(participantID string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return
	}

	p.OpenStreams--
	if p.OpenStreams > 0 {
		return
	}

	delete(r.participants, participantID)
	for i, id := range r.order {
		if id == participantID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if len(r.participants) == 0 {
		r.emptySince = now
	}
	metrics.ParticipantsCurrent.Dec()

	r.broadcaster.Publish(domain.PartEvent{User: participantID})
	r.notify(r.summaryLocked())
	slog.Info("participant left", "room", r.id, "user", participantID)
}

// RecordVote replaces the participant's current vote wholesale.
func (r *Room) RecordVote(participantID string, vote domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return domain.ErrNotInRoom
	}
	v := vote
	p.CurrentVote = &v
	r.broadcaster.Publish(domain.VoteEvent{User: participantID, Vote: &v})
	return nil
}

// Reveal sets the reveal flag. Idempotent; every call publishes the
// flag so late reveal requests still repaint clients.
func (r *Room) Reveal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revealed = true
	r.broadcaster.Publish(domain.RevealedEvent{Revealed: true})
}

// Reset conceals the room and clears every vote. Vote-clear events go
// out before the reveal-flag flip so an incrementally repainting client
// never shows a revealed state with stale votes.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.revealed = false
	for _, id := range r.order {
		r.participants[id].CurrentVote = nil
		r.broadcaster.Publish(domain.VoteEvent{User: id, Vote: nil})
	}
	r.broadcaster.Publish(domain.RevealedEvent{Revealed: false})
}

// Rename updates the participant's display name. Ignored when the
// participant is not a member: a client may belong to zero or many
// rooms and the rename fans out across all of them.
func (r *Room) Rename(participantID, newName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return false
	}
	p.DisplayName = newName
	r.broadcaster.Publish(domain.NameEvent{User: participantID, Name: newName})
	r.notify(r.summaryLocked())
	return true
}

// RecordLiveness advances the participant's last-seen timestamp.
func (r *Room) RecordLiveness(participantID string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return domain.ErrNotInRoom
	}
	p.LastSeen = now
	return nil
}

// LastSeen reports the participant's last-seen timestamp.
func (r *Room) LastSeen(participantID string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[participantID]
	if !ok {
		return time.Time{}, false
	}
	return p.LastSeen, true
}

// Contains reports whether the participant is currently joined.
func (r *Room) Contains(participantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.participants[participantID]
	return ok
}

// Snapshot returns the reveal flag and a copy of every participant in
// join order, for full state replay on (re)connect.
func (r *Room) Snapshot() (revealed bool, participants []domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participants = make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		participants = append(participants, *r.participants[id])
	}
	return r.revealed, participants
}

// Summary returns the index view of the room.
func (r *Room) Summary() domain.RoomSummaryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaryLocked()
}

func (r *Room) summaryLocked() domain.RoomSummaryEvent {
	users := make([]string, 0, len(r.order))
	for _, id := range r.order {
		users = append(users, r.participants[id].DisplayName)
	}
	return domain.RoomSummaryEvent{RoomSummary: domain.RoomSummary{ID: r.id, Users: users}}
}

// EmptySince reports how long the room has had zero participants. The
// second return is false while the room is occupied.
func (r *Room) EmptySince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.participants) > 0 {
		return time.Time{}, false
	}
	return r.emptySince, true
}
