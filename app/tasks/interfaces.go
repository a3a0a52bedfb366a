package tasks

import (
	"context"
	"time"

	"github.com/avolokh/cfp-comb/app/conference"
)

// TaskSchedulerInterface defines the interface for task scheduling
// operations used by the main application: queue management, worker pool
// control, and the periodic status-refresh schedule.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type ReconcilerInterface interface {
	Reconcile(ctx context.Context, rec conference.Record, now time.Time) (*conference.Result, error)
}

var _ ReconcilerInterface = (*conference.Reconciler)(nil)
