// Package app is the application layer: one method per user-facing
// action, orchestrating the room registry, index, and stream sessions.
// The HTTP layer calls only into this package.
package app
