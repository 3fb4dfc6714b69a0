package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Update(t *testing.T) {
	ctx, tracker := WithNewTracker(context.Background(), "session-1", nil)

	UpdateCtx(ctx, Delta{Total: 3})
	UpdateCtx(ctx, Delta{Running: 1})
	UpdateCtx(ctx, Delta{Running: -1, Completed: 1})
	UpdateCtx(ctx, Delta{Failed: 1})

	snapshot := tracker.Snapshot()
	assert.Equal(t, "session-1", snapshot.SessionID)
	assert.Equal(t, 3, snapshot.TotalTargets)
	assert.Equal(t, 0, snapshot.RunningTargets)
	assert.Equal(t, 1, snapshot.CompletedTargets)
	assert.Equal(t, 1, snapshot.FailedTargets)
}

func TestProgress_OnChange(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	_, tracker := WithNewTracker(context.Background(), "session-2", func(p Progress) {
		mu.Lock()
		seen = append(seen, p.CompletedTargets)
		mu.Unlock()
	})

	tracker.Update(Delta{Completed: 1})
	tracker.Update(Delta{Completed: 1})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestProgress_NilSafe(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Total: 1})
	assert.Equal(t, Progress{}, tracker.Snapshot())

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
