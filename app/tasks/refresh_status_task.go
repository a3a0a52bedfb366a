package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolokh/cfp-comb/app/database"
)

// RefreshStatusTask expires the denormalized status flags as wall-clock
// time passes: CFPs whose start date is no longer in the future and
// important dates whose value has lapsed.
type RefreshStatusTask struct {
	Task
	cfpRepo  database.CFPRepository
	dateRepo database.ImportantDateRepository
}

func NewRefreshStatusTask(cfpRepo database.CFPRepository, dateRepo database.ImportantDateRepository) *RefreshStatusTask {
	return &RefreshStatusTask{
		Task:     NewTask(TaskTypeRefreshStatus, ""),
		cfpRepo:  cfpRepo,
		dateRepo: dateRepo,
	}
}

func (t *RefreshStatusTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := time.Now().UTC()

	expiredCFPs, err := t.cfpRepo.RefreshStatus(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to refresh CFP statuses: %w", err)
	}

	expiredDates, err := t.dateRepo.RefreshStatus(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to refresh important date statuses: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshStatus",
		"duration", t.GetDuration(),
		"expired_cfps", expiredCFPs,
		"expired_dates", expiredDates)

	return nil
}
