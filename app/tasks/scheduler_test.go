package tasks

import (
	"testing"
	"time"

	"github.com/avolokh/cfp-comb/app/cfg"
	"github.com/avolokh/cfp-comb/app/listing"
)

func newTestScheduler(t *testing.T) TaskSchedulerInterface {
	t.Helper()

	cfg.Set(&cfg.Cfg{
		WorkerCount:       1,
		SchedulerInterval: 3600,
		RefreshCron:       "0 * * * *",
	})

	listings := listing.NewCache(t.TempDir())
	return NewScheduler(listings, &fakeReconciler{}, nil, nil)
}

func TestSchedulerRunsEnqueuedTasks(t *testing.T) {
	s := newTestScheduler(t)

	reconciler := &fakeReconciler{}
	task := NewReconcileRecordTask("exc", testRecord(), reconciler)

	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for reconciler.Calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("Task was not executed within 2s")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler(t)

	s.Start()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return within 2s")
	}
}
