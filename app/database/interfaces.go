package database

import (
	"context"
	"time"
)

type ConferenceRepository interface {
	// Upsert resolves a conference by its (name, acronym) natural key,
	// creating it on first encounter. Existing rows are returned
	// unmodified: the natural key is immutable and carries no other data.
	Upsert(ctx context.Context, name, acronym string) (*Conference, error)

	GetByNaturalKey(ctx context.Context, name, acronym string) (*Conference, error)
	GetByAcronym(ctx context.Context, acronym string) (*Conference, error)
	List(ctx context.Context) ([]Conference, error)
	Count(ctx context.Context) (int, error)
}

type CFPRepository interface {
	// GetActive returns the most recently created CFP with status true for
	// the conference, or nil when none exists.
	GetActive(ctx context.Context, conferenceID string) (*CallForPapers, error)

	Create(ctx context.Context, cfp *CallForPapers) error
	Update(ctx context.Context, cfp *CallForPapers) error
	ListByConference(ctx context.Context, conferenceID string) ([]CallForPapers, error)
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)

	// RefreshStatus expires active CFPs whose start date has passed.
	RefreshStatus(ctx context.Context, now time.Time) (int64, error)
}

type ImportantDateRepository interface {
	Get(ctx context.Context, cfpID, dateType string) (*ImportantDate, error)

	// Upsert writes the single row keyed by (cfp_id, date_type), creating
	// it on first encounter and overwriting value and status otherwise.
	Upsert(ctx context.Context, cfpID, dateType string, value time.Time, status bool) (*ImportantDate, error)

	ListByCFP(ctx context.Context, cfpID string) ([]ImportantDate, error)
	Count(ctx context.Context) (int, error)
	CountUpcoming(ctx context.Context) (int, error)
	RefreshStatus(ctx context.Context, now time.Time) (int64, error)
}
