// Package server is the HTTP layer: echo routes for the action
// endpoints, SSE and WebSocket stream transports, cookie-based
// participant identity, and connection limiting. All room logic lives
// behind the app service; this package only translates HTTP to core
// operations and events back to the wire.
package server
