package api

import (
	"context"
	"time"

	"github.com/avolokh/cfp-comb/app/conference"
	"github.com/avolokh/cfp-comb/app/database"
	"github.com/avolokh/cfp-comb/app/listing"
	"github.com/avolokh/cfp-comb/app/tasks"
)

type ReconcilerInterface interface {
	Reconcile(ctx context.Context, rec conference.Record, now time.Time) (*conference.Result, error)
}

var _ ReconcilerInterface = (*conference.Reconciler)(nil)

type Handler struct {
	conferenceRepo database.ConferenceRepository
	cfpRepo        database.CFPRepository
	dateRepo       database.ImportantDateRepository
	listings       *listing.Cache
	reconciler     ReconcilerInterface
	scheduler      tasks.TaskSchedulerInterface
}
