package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	mu    sync.Mutex
	names []string
	fail  string
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	name := task.Config().Name
	if name == q.fail {
		return "", errors.New("queue closed")
	}
	q.names = append(q.names, name)
	return name + "-1", nil
}

func (q *fakeQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.names...)
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 8 * * *"))
	assert.NoError(t, ValidateSchedule("*/15 * * * 1-5"))
	assert.Error(t, ValidateSchedule(""))
	assert.Error(t, ValidateSchedule("every morning"))
	assert.Error(t, ValidateSchedule("0 0 8 * * *"), "seconds field is not accepted")
}

func TestNotificationScheduler_RunNow(t *testing.T) {
	queue := &fakeQueue{}
	s := NewNotificationScheduler(queue, "0 8 * * *")

	require.NoError(t, s.RunNow())
	assert.Equal(t, []string{"overdue_scan", "wishlist_scan"}, queue.enqueued())
}

func TestNotificationScheduler_RunNowPartialFailure(t *testing.T) {
	queue := &fakeQueue{fail: "overdue_scan"}
	s := NewNotificationScheduler(queue, "0 8 * * *")

	err := s.RunNow()

	assert.Error(t, err)
	assert.Equal(t, []string{"wishlist_scan"}, queue.enqueued(), "one failure does not block the other scan")
}

func TestNotificationScheduler_StartStop(t *testing.T) {
	s := NewNotificationScheduler(&fakeQueue{}, "0 8 * * *")

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	next := s.NextRun()
	assert.False(t, next.IsZero())
	assert.Equal(t, 8, next.Hour())

	require.NoError(t, s.Start(context.Background()), "second start is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())
	s.Stop()
}

func TestNotificationScheduler_StopsWithContext(t *testing.T) {
	s := NewNotificationScheduler(&fakeQueue{}, "0 8 * * *")
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestNotificationScheduler_InvalidSchedule(t *testing.T) {
	s := NewNotificationScheduler(&fakeQueue{}, "not a schedule")

	err := s.Start(context.Background())

	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}
