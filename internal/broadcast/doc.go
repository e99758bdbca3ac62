// Package broadcast implements the bounded-queue pub/sub primitive
// used both per-room and for the global room index.
//
// Publish never blocks: each subscriber owns a small buffered queue,
// and a subscriber whose queue is full at publish time is dropped on
// the spot. Clients replay full state on reconnect, so losing a slow
// consumer's tail is a policy choice rather than a bug.
package broadcast
