// Package metrics defines the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Room and participant state
var (
	// RoomsCurrent tracks the number of rooms in the registry.
	RoomsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_current",
			Help: "Number of rooms currently in the registry",
		},
	)

	// RoomsEvictedTotal counts empty rooms removed by the janitor.
	RoomsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_evicted_total",
			Help: "Total empty rooms evicted after the grace period",
		},
	)

	// ParticipantsCurrent tracks joined participants across all rooms.
	ParticipantsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "participants_current",
			Help: "Number of participants currently joined across all rooms",
		},
	)
)

// Broadcast fan-out
var (
	// EventsPublishedTotal counts events published per kind.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total events published to broadcasters by kind",
		},
		[]string{"kind"},
	)

	// SubscribersDroppedTotal counts subscribers evicted because their
	// queue was full at publish time.
	SubscribersDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_subscribers_dropped_total",
			Help: "Total slow subscribers dropped at publish time",
		},
	)
)

// Stream sessions
var (
	// StreamsCurrent tracks open stream sessions by variant (room/index).
	StreamsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "streams_current",
			Help: "Open stream sessions by variant",
		},
		[]string{"variant"},
	)

	// StreamsOpenedTotal counts stream sessions opened by variant.
	StreamsOpenedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streams_opened_total",
			Help: "Total stream sessions opened by variant",
		},
		[]string{"variant"},
	)

	// KeepalivesSentTotal counts synthetic keepalive events emitted.
	KeepalivesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_keepalives_sent_total",
			Help: "Total synthetic keepalive events emitted on streams",
		},
	)

	// LivenessExpiriesTotal counts room streams terminated because the
	// participant's last-seen timestamp went stale.
	LivenessExpiriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_liveness_expiries_total",
			Help: "Total room streams terminated by liveness expiry",
		},
	)
)

// HTTP layer
var (
	// StreamOpensRejectedTotal counts stream opens rejected by the
	// connection limits, labeled by reason (capacity/rate).
	StreamOpensRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stream_opens_rejected_total",
			Help: "Stream opens rejected by connection limiting, by reason",
		},
		[]string{"reason"},
	)
)
