package domain

import "errors"

var (
	// ErrRoomNotFound is returned by operations that require a room to
	// already exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrNotInRoom is returned when a room-scoped action is requested
	// for a participant that is not currently joined. No partial
	// mutation occurs.
	ErrNotInRoom = errors.New("participant not in room")
)
