package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingTask struct {
	Task
	failures int32
	calls    atomic.Int32
	done     chan struct{}
}

func newCountingTask(failures int32) *countingTask {
	return &countingTask{
		Task:     NewTask(TaskTypeScrapeArticles),
		failures: failures,
		done:     make(chan struct{}),
	}
}

func (t *countingTask) Execute(ctx context.Context) error {
	call := t.calls.Add(1)
	if call <= t.failures {
		return errors.New("temporary failure")
	}
	close(t.done)
	return nil
}

func TestTaskRetryAccounting(t *testing.T) {
	task := NewTask(TaskTypeScrapeDeals)

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected no retries after reaching the maximum")
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	scheduler := NewScheduler(nil, time.Hour)
	scheduler.retryDelay = time.Millisecond
	scheduler.Start()
	defer scheduler.Stop()

	task := newCountingTask(2)
	if err := scheduler.EnqueueTask(task); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	select {
	case <-task.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for task to succeed after retries")
	}

	if calls := task.calls.Load(); calls != 3 {
		t.Errorf("Expected 3 executions, got %d", calls)
	}
	if task.GetRetryCount() != 2 {
		t.Errorf("Expected retry count 2, got %d", task.GetRetryCount())
	}
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	scheduler := NewScheduler(nil, time.Hour)
	scheduler.Start()
	scheduler.Stop()

	// The queue still has room, so either outcome is a non-blocking return.
	done := make(chan struct{})
	go func() {
		_ = scheduler.EnqueueTask(newCountingTask(0))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Expected EnqueueTask not to block after Stop")
	}
}
