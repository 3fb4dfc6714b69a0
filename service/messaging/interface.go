package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by Consume once the queue has been closed and every
// published message has been handed out.
var ErrClosed = errors.New("queue closed")

// Queue represents an abstract work queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue. Publishing after
	// Close is not allowed.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until a
	// message is available, the context is cancelled, or the queue is closed
	// and drained (ErrClosed).
	Consume(ctx context.Context) (Message[T], error)

	// Close marks the queue complete; consumers drain the remaining messages
	// and then receive ErrClosed.
	Close()

	// Size returns the number of messages not yet consumed.
	Size() int
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// ID returns the unique message identifier.
	ID() string

	// T returns the payload of this message.
	T() *T
}
