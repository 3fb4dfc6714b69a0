package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fuzzor/service/messaging"
)

type TestPayload struct {
	ID    string
	Count int
}

func TestQueue(t *testing.T) {
	queue := NewQueue[TestPayload](4)
	ctx := context.Background()

	payload := TestPayload{ID: "test-1", Count: 1}
	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, message)
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, 0, queue.Size())

	msgData := message.T()
	assert.Equal(t, payload.ID, msgData.ID)
	assert.Equal(t, payload.Count, msgData.Count)
}

func TestQueue_CloseDrains(t *testing.T) {
	queue := NewQueue[TestPayload](8)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := queue.Publish(ctx, &TestPayload{ID: fmt.Sprintf("m-%d", i), Count: i})
		assert.NoError(t, err)
	}
	queue.Close()

	// pending messages remain consumable after Close
	for i := 0; i < 5; i++ {
		message, err := queue.Consume(ctx)
		assert.NoError(t, err)
		assert.Equal(t, i, message.T().Count)
	}

	// drained and closed
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, messaging.ErrClosed)
}

func TestQueue_ContextCancellation(t *testing.T) {
	queue := NewQueue[TestPayload](1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := queue.Consume(ctx)
	assert.Error(t, err)

	// publish blocks when the buffer is full and honours cancellation
	full := NewQueue[TestPayload](1)
	assert.NoError(t, full.Publish(context.Background(), &TestPayload{ID: "a"}))

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelTimeout()
	err = full.Publish(timeoutCtx, &TestPayload{ID: "b"})
	assert.Error(t, err)
}
