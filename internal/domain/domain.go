package domain

import "time"

// Vote is a single participant's estimate. A Value of 0 means the
// participant abstains. Votes are immutable; re-voting replaces the
// whole struct.
type Vote struct {
	Value    float64 `json:"value"`
	Emphasis bool    `json:"emphasis"`
}

// Participant is one client's state within a room. The ID is an opaque
// token issued once per client session and stays stable across
// reconnects. OpenStreams counts concurrently open connections for this
// participant in this room (multiple tabs); the participant leaves the
// room when it drops to zero.
type Participant struct {
	ID          string
	DisplayName string
	CurrentVote *Vote
	OpenStreams int
	LastSeen    time.Time
}

// RoomSummary is the index view of a room: its code and the display
// names of its members in join order.
type RoomSummary struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}
