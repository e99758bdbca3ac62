package broadcast

import (
	"log/slog"
	"sync"

	"github.com/karantza/scrumpoker/internal/domain"
	"github.com/karantza/scrumpoker/internal/metrics"
)

// subscriberQueueSize bounds each subscriber's queue. Five slots is
// enough to absorb a reset burst in a small room; anything slower than
// that is treated as dead.
const subscriberQueueSize = 5

// Broadcaster fans events out to an arbitrary number of subscribers.
// All methods are safe for concurrent use.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is one subscriber's handle. Events arrive on Events() in
// publish order. The channel is closed when the subscription is dropped
// for falling behind or when Close is called.
type Subscription struct {
	b  *Broadcaster
	ch chan domain.Event
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber. There is no limit on the number
// of concurrent subscriptions.
func (b *Broadcaster) Subscribe() *Subscription {
	s := &Subscription{b: b, ch: make(chan domain.Event, subscriberQueueSize)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish enqueues ev onto every subscriber without blocking. A
// subscriber whose queue is full is removed and its channel closed; the
// consumer observes the drop as a closed channel.
func (b *Broadcaster) Publish(ev domain.Event) {
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Kind())).Inc()

	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			b.removeLocked(s)
			metrics.SubscribersDroppedTotal.Inc()
			slog.Warn("dropping slow subscriber", "kind", ev.Kind())
		}
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// removeLocked unregisters s and closes its channel. Closing under the
// lock is safe: only Publish sends on the channel, and it holds the
// same lock.
func (b *Broadcaster) removeLocked(s *Subscription) {
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.ch)
}

// Events returns the subscriber's receive channel. It is closed when
// the subscription ends.
func (s *Subscription) Events() <-chan domain.Event {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once and
// safe to call after the broadcaster has already dropped it.
func (s *Subscription) Close() {
	s.b.mu.Lock()
	s.b.removeLocked(s)
	s.b.mu.Unlock()
}
