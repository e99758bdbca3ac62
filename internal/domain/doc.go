// Package domain defines the core types shared across the service:
// votes, participants, the event tagged union carried by streams, and
// the sentinel errors surfaced to callers.
package domain
