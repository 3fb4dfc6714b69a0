package memory

import (
	"context"

	"github.com/viant/fuzzor/internal/idgen"
	"github.com/viant/fuzzor/service/messaging"
)

// Message implements messaging.Message for the in-memory queue.
type Message[T any] struct {
	id      string
	payload T
}

// ID returns the unique message identifier.
func (m *Message[T]) ID() string {
	return m.id
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.payload
}

// Queue implements an in-memory messaging.Queue backed by a buffered
// channel. It is intended for the pattern used by the run scheduler: publish
// all work up front, Close, then let a bounded set of workers drain it.
type Queue[T any] struct {
	messages chan *Message[T]
}

// NewQueue creates a new in-memory queue with the supplied buffer size.
func NewQueue[T any](buffer int) *Queue[T] {
	if buffer <= 0 {
		buffer = 1
	}
	return &Queue[T]{messages: make(chan *Message[T], buffer)}
}

// Publish adds a new item to the queue.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	msg := &Message[T]{id: idgen.New(), payload: *t}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg, ok := <-q.messages:
		if !ok {
			return nil, messaging.ErrClosed
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close marks the queue complete. Pending messages remain consumable.
func (q *Queue[T]) Close() {
	close(q.messages)
}

// Size returns the current number of messages in the queue.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
