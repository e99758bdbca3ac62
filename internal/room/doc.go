// Package room holds the in-memory room state: per-room participant
// and reveal state guarded by a per-room mutex, the process-wide
// registry mapping room codes to rooms, and the global index that
// publishes room summaries to the lobby view.
package room
