package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolokh/cfp-comb/app/conference"
	"github.com/avolokh/cfp-comb/app/dates"
)

// ReconcileRecordTask processes one conference record end-to-end under its
// own error boundary. Records are independent units of work, so any number
// of them may run in parallel across workers.
type ReconcileRecordTask struct {
	Task
	Record     conference.Record
	reconciler ReconcilerInterface
}

func NewReconcileRecordTask(sourceName string, rec conference.Record, reconciler ReconcilerInterface) *ReconcileRecordTask {
	return &ReconcileRecordTask{
		Task:       NewTask(TaskTypeReconcileRecord, sourceName),
		Record:     rec,
		reconciler: reconciler,
	}
}

func (t *ReconcileRecordTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	res, err := t.reconciler.Reconcile(ctx, t.Record, time.Now().UTC())
	if err != nil {
		// A malformed date range is a property of the source data, not a
		// transient fault: log it, skip the record, and do not retry.
		var formatErr *dates.FormatError
		if errors.As(err, &formatErr) {
			slog.Error("Record skipped, unparseable conference dates",
				"source", t.SourceName, "acronym", t.Record.Acronym, "error", err)
			return nil
		}
		return fmt.Errorf("failed to reconcile record: %w", err)
	}

	slog.Info("Task completed",
		"type", "ReconcileRecord",
		"source", t.SourceName,
		"acronym", t.Record.Acronym,
		"duration", t.GetDuration(),
		"cfp_created", res.CFPCreated,
		"important_dates", len(res.ImportantDates),
		"skipped_dates", len(res.SkippedDates))

	return nil
}
