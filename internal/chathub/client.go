// Package chathub holds the live-connection registries and the per-connection
// chat protocol. Both hubs are plain service objects constructed once at
// startup and injected into the handlers, so tests can run isolated
// instances.
package chathub

// Client is one live connection, independent of transport. The hub only
// needs to know who the connection belongs to and how to push events to it.
type Client interface {
	// UserID returns the authenticated user behind the connection.
	UserID() uint
	// Send queues an outbound event for delivery. It must not block; a
	// false return means the client could not accept the event and should
	// be treated as dead.
	Send(event any) bool
	// Close tears the connection down and releases its send queue.
	Close()
}
