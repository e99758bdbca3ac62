// Package stream runs the per-connection session lifecycle: join and
// state replay on open, live event relay with synthetic keepalives,
// liveness-based termination, and exactly-once cleanup on every exit
// path. The transport is abstracted behind EventSink so the same
// lifecycle serves SSE and WebSocket connections.
package stream
