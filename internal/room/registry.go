package room

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/karantza/scrumpoker/internal/domain"
	"github.com/karantza/scrumpoker/internal/metrics"
)

// Registry is the process-wide mapping from room code to Room. Its own
// lock covers only map lookup and insertion; all room state mutation
// happens under the individual room's lock.
type Registry struct {
	index *Index
	clock clockwork.Clock

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry publishing summaries to index.
func NewRegistry(index *Index, clock clockwork.Clock) *Registry {
	return &Registry{
		index: index,
		clock: clock,
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the existing room or atomically constructs and
// registers a new one. Creation announces the (empty) room on the
// index.
func (reg *Registry) GetOrCreate(roomID string) *Room {
	reg.mu.RLock()
	r, ok := reg.rooms[roomID]
	reg.mu.RUnlock()
	if ok {
		return r
	}

	reg.mu.Lock()
	if r, ok = reg.rooms[roomID]; ok {
		reg.mu.Unlock()
		return r
	}
	r = New(roomID, reg.clock.Now(), reg.index.Publish)
	reg.rooms[roomID] = r
	metrics.RoomsCurrent.Set(float64(len(reg.rooms)))
	reg.mu.Unlock()

	reg.index.Publish(r.Summary())
	slog.Info("room created", "room", roomID)
	return r
}

// Get returns the room or domain.ErrRoomNotFound, for operations that
// must not imply creation.
func (reg *Registry) Get(roomID string) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return r, nil
}

// Summaries returns one summary per known room, for the index-stream
// snapshot.
func (reg *Registry) Summaries() []domain.RoomSummaryEvent {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	summaries := make([]domain.RoomSummaryEvent, 0, len(rooms))
	for _, r := range rooms {
		summaries = append(summaries, r.Summary())
	}
	return summaries
}

// RenameEverywhere applies a display-name change to every room the
// participant is currently a member of.
func (reg *Registry) RenameEverywhere(participantID, newName string) {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	for _, r := range rooms {
		r.Rename(participantID, newName)
	}
}

// EvictEmpty removes rooms that have had no participants for at least
// grace. Returns the number of rooms evicted.
func (reg *Registry) EvictEmpty(grace time.Duration) int {
	now := reg.clock.Now()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	evicted := 0
	for id, r := range reg.rooms {
		since, empty := r.EmptySince()
		if !empty || now.Sub(since) < grace {
			continue
		}
		delete(reg.rooms, id)
		evicted++
		metrics.RoomsEvictedTotal.Inc()
		slog.Info("evicted empty room", "room", id, "empty_for", now.Sub(since))
	}
	metrics.RoomsCurrent.Set(float64(len(reg.rooms)))
	return evicted
}

// RunJanitor evicts empty rooms every grace interval until stop is
// closed. Started only when eviction is enabled by configuration; the
// default behavior keeps rooms forever, matching the index simply
// reporting them as empty.
func (reg *Registry) RunJanitor(grace time.Duration, stop <-chan struct{}) {
	ticker := reg.clock.NewTicker(grace)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			reg.EvictEmpty(grace)
		case <-stop:
			return
		}
	}
}
