package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// RunTimeout bounds a single scrape run, scheduled or triggered.
const RunTimeout = 15 * time.Minute

const maxRetryDelay = 30 * time.Second

// Scheduler triggers an article and a deals run on every tick. A single
// worker executes the queue so scheduled runs never overlap.
type Scheduler struct {
	pipeline   *Pipeline
	interval   time.Duration
	retryDelay time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	taskQueue  chan TaskInterface
}

func NewScheduler(pipeline *Pipeline, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pipeline:   pipeline,
		interval:   interval,
		retryDelay: time.Second,
		ctx:        ctx,
		cancel:     cancel,
		taskQueue:  make(chan TaskInterface, 16),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()

	slog.Info("Scheduler started", "interval", s.interval.String())
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueTasks() {
	for _, task := range []TaskInterface{
		NewScrapeArticlesTask(s.pipeline),
		NewScrapeDealsTask(s.pipeline),
	} {
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "error", err)
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(task)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, RunTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		slog.Info("Task completed", "type", string(task.GetType()), "id", task.GetID(), "duration", task.GetDuration().String())
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	delay := s.retryDelay * time.Duration(1<<uint(task.GetRetryCount()-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "error", retryErr)
			}
		}
	}()
}
