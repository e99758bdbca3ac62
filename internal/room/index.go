package room

import (
	"github.com/karantza/scrumpoker/internal/broadcast"
	"github.com/karantza/scrumpoker/internal/domain"
)

// Index is the single broadcaster behind the room-listing view. Rooms
// publish a fresh summary here after every membership or name change.
type Index struct {
	broadcaster *broadcast.Broadcaster
}

// NewIndex creates an index with no subscribers.
func NewIndex() *Index {
	return &Index{broadcaster: broadcast.New()}
}

// Subscribe registers a new index subscriber.
func (i *Index) Subscribe() *broadcast.Subscription {
	return i.broadcaster.Subscribe()
}

// Publish fans a room summary out to all index subscribers.
func (i *Index) Publish(summary domain.RoomSummaryEvent) {
	i.broadcaster.Publish(summary)
}
