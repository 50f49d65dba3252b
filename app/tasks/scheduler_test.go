package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rssforge/rssforge/app/cfg"
	"github.com/rssforge/rssforge/app/feed"
)

type failingRetryTask struct {
	Task
	executions atomic.Int32
}

func (t *failingRetryTask) Execute(context.Context) error {
	t.executions.Add(1)
	return fmt.Errorf("transient failure")
}

func newTestScheduler(t *testing.T) TaskSchedulerInterface {
	t.Helper()
	cfg.SetForTesting(&cfg.Cfg{WorkerCount: 1, SchedulerInterval: 3600})
	return NewScheduler(feed.NewConfigCache(t.TempDir()), nil, newFakeRepo(), &recordingNotifier{})
}

func TestScheduler_StopWithPendingRetry(t *testing.T) {
	scheduler := newTestScheduler(t)
	scheduler.Start()

	task := &failingRetryTask{Task: NewTask(TaskTypeRefreshFeed, "news")}
	require.NoError(t, scheduler.EnqueueTask(task))

	// Let the worker fail the task once so a retry gets scheduled
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop should abort pending retries instead of waiting on them")
	}

	assert.GreaterOrEqual(t, task.executions.Load(), int32(1))
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	scheduler := newTestScheduler(t)
	scheduler.Start()
	defer scheduler.Stop()

	task := &failingRetryTask{Task: NewTask(TaskTypeRefreshFeed, "news")}
	require.NoError(t, scheduler.EnqueueTask(task))

	// First retry is re-enqueued after a 1s backoff
	deadline := time.Now().Add(3 * time.Second)
	for task.executions.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	assert.GreaterOrEqual(t, task.executions.Load(), int32(2))
}
