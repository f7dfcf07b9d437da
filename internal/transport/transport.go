// Package transport defines the pub/sub backend surface the CLI drives.
// Implementations live in subpackages, one per broker protocol.
package transport

import "context"

// Publisher sends one message to a channel. Implementations must be
// safe for concurrent use: the batch loop publishes from overlapping
// goroutines.
type Publisher interface {
	Publish(ctx context.Context, channel, payload string) error
}

// Handler receives one message from a subscribed channel.
type Handler func(channel, payload string)

// Client is a connection to one pub/sub backend.
type Client interface {
	Publisher

	// Subscribe delivers messages on channel to handler until ctx is
	// canceled.
	Subscribe(ctx context.Context, channel string, handler Handler) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
