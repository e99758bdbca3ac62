package domain

// EventKind labels an event on the wire. The set is closed: every kind
// has exactly one payload shape below.
type EventKind string

const (
	KindJoin        EventKind = "join"
	KindPart        EventKind = "part"
	KindVote        EventKind = "vote"
	KindRevealed    EventKind = "revealed"
	KindName        EventKind = "name"
	KindRoomSummary EventKind = "room-summary"
	KindKeepalive   EventKind = "keepalive"
	KindIdentity    EventKind = "identity-assigned"
)

// Event is the closed union of messages delivered over a stream. Each
// concrete payload struct marshals to the JSON body; Kind supplies the
// wire label.
type Event interface {
	Kind() EventKind
}

// JoinEvent announces a participant entering a room.
type JoinEvent struct {
	User string `json:"user"`
	Name string `json:"name"`
}

func (JoinEvent) Kind() EventKind { return KindJoin }

// PartEvent announces a participant leaving a room.
type PartEvent struct {
	User string `json:"user"`
}

func (PartEvent) Kind() EventKind { return KindPart }

// VoteEvent carries a participant's current vote. Vote is nil when the
// vote has been cleared.
type VoteEvent struct {
	User string `json:"user"`
	Vote *Vote  `json:"vote"`
}

func (VoteEvent) Kind() EventKind { return KindVote }

// RevealedEvent carries the room's reveal flag.
type RevealedEvent struct {
	Revealed bool `json:"revealed"`
}

func (RevealedEvent) Kind() EventKind { return KindRevealed }

// NameEvent announces a participant's display name change.
type NameEvent struct {
	User string `json:"user"`
	Name string `json:"name"`
}

func (NameEvent) Kind() EventKind { return KindName }

// RoomSummaryEvent is published on the index stream whenever a room's
// membership or a member name changes.
type RoomSummaryEvent struct {
	RoomSummary
}

func (RoomSummaryEvent) Kind() EventKind { return KindRoomSummary }

// KeepaliveEvent is synthesized by a stream session when no event
// arrives within the keepalive interval. It exists to defeat
// intermediary idle-connection timeouts and carries a per-stream
// sequence number.
type KeepaliveEvent struct {
	Seq int `json:"seq"`
}

func (KeepaliveEvent) Kind() EventKind { return KindKeepalive }

// IdentityEvent is the first event on a room stream and tells the peer
// its own participant id and current display name.
type IdentityEvent struct {
	User string `json:"user"`
	Name string `json:"name"`
}

func (IdentityEvent) Kind() EventKind { return KindIdentity }
