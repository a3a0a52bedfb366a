package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avolokh/cfp-comb/app/cfg"
	"github.com/avolokh/cfp-comb/app/database"
	"github.com/avolokh/cfp-comb/app/listing"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs a fixed worker pool over a task queue. Listing sources
// are re-enqueued on an interval ticker (reconciliation is idempotent, so
// repeated runs only update in place), and a cron entry drives the
// periodic status refresh.
type Scheduler struct {
	listings    *listing.Cache
	reconciler  ReconcilerInterface
	cfpRepo     database.CFPRepository
	dateRepo    database.ImportantDateRepository
	interval    time.Duration
	refreshCron string
	workerCount int
	cron        *cron.Cron
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(listings *listing.Cache, reconciler ReconcilerInterface,
	cfpRepo database.CFPRepository, dateRepo database.ImportantDateRepository) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		listings:    listings,
		reconciler:  reconciler,
		cfpRepo:     cfpRepo,
		dateRepo:    dateRepo,
		interval:    time.Duration(cfg.SchedulerInterval) * time.Second,
		refreshCron: cfg.RefreshCron,
		workerCount: cfg.WorkerCount,
		cron:        cron.New(),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	if _, err := s.cron.AddFunc(s.refreshCron, s.enqueueRefreshTask); err != nil {
		slog.Error("Invalid refresh cron spec, status refresh disabled", "spec", s.refreshCron, "error", err)
	}
	s.cron.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueReconcileTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueReconcileTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.wg.Wait()
	close(s.taskQueue)
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

func (s *Scheduler) enqueueReconcileTasks() {
	sources := s.listings.GetEnabledSources()
	if len(sources) == 0 {
		slog.Debug("No enabled listing sources found")
		return
	}

	slog.Debug("Enqueueing listing sources for reconciliation", "count", len(sources))

	for _, source := range sources {
		rec, err := source.Record()
		if err != nil {
			slog.Warn("Invalid listing source, skipping", "source", source.Name, "error", err)
			continue
		}

		task := NewReconcileRecordTask(source.Name, rec, s.reconciler)
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue ReconcileRecordTask", "source", source.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueRefreshTask() {
	task := NewRefreshStatusTask(s.cfpRepo, s.dateRepo)
	if err := s.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue RefreshStatusTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
