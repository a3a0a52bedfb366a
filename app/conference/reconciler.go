package conference

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolokh/cfp-comb/app/database"
	"github.com/avolokh/cfp-comb/app/dates"
)

// Reconciler merges one listing record into the conference, CFP and
// important-date tables. Each record is processed inside a single
// transaction, so a failure midway leaves no orphaned rows.
type Reconciler struct {
	db *database.DB
}

func NewReconciler(db *database.DB) *Reconciler {
	return &Reconciler{db: db}
}

// Reconcile upserts the record's conference, resolves its single active
// CFP, and writes one important-date row per populated category.
//
// The conference-dates range is parsed before anything is written: a
// dates.FormatError there aborts the record with zero writes. Within a
// category, extracted matches are processed sequentially in source order
// and each overwrites the (cfp_id, date_type) slot, so the last parseable
// match wins deterministically. Matches that fail lenient parsing are
// logged and skipped without aborting sibling categories.
func (r *Reconciler) Reconcile(ctx context.Context, rec Record, now time.Time) (*Result, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}

	rng, err := dates.ParseRange(rec.ConferenceDates)
	if err != nil {
		return nil, fmt.Errorf("conference dates: %w", err)
	}

	var res *Result
	err = r.db.InTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		res, txErr = r.reconcileTx(ctx, tx, rec, rng, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Reconciler) reconcileTx(ctx context.Context, tx *sql.Tx, rec Record, rng dates.Range, now time.Time) (*Result, error) {
	conferences := database.NewConferenceRepository(tx)
	cfps := database.NewCFPRepository(tx)
	importantDates := database.NewImportantDateRepository(tx)

	conf, err := conferences.Upsert(ctx, rec.Name, rec.Acronym)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conference: %w", err)
	}

	cfp, created, err := r.reconcileCFP(ctx, cfps, conf.ID, rec, rng, now)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Conference: conf,
		CFP:        cfp,
		CFPCreated: created,
	}

	written := make(map[Category]database.ImportantDate)
	for _, cat := range Categories {
		text, ok := rec.Deadlines[cat]
		if !ok {
			continue
		}

		for _, match := range dates.ExtractDates(text) {
			value, err := dates.ParseLoose(match)
			if err != nil {
				slog.Warn("Skipping unparseable date",
					"acronym", rec.Acronym, "category", string(cat), "match", match, "error", err)
				res.SkippedDates = append(res.SkippedDates, match)
				continue
			}

			row, err := importantDates.Upsert(ctx, cfp.ID, string(cat), value, value.After(now))
			if err != nil {
				return nil, fmt.Errorf("failed to upsert %s: %w", string(cat), err)
			}
			written[cat] = *row
		}
	}

	for _, cat := range Categories {
		if row, ok := written[cat]; ok {
			res.ImportantDates = append(res.ImportantDates, row)
		}
	}
	return res, nil
}

// reconcileCFP updates the active CFP in place when one exists, otherwise
// creates a new row. Expired CFPs are never touched: once a conference's
// active window has lapsed, fresh dates open a new CFP and the old row
// stays as history.
func (r *Reconciler) reconcileCFP(ctx context.Context, cfps database.CFPRepository,
	conferenceID string, rec Record, rng dates.Range, now time.Time) (*database.CallForPapers, bool, error) {

	status := rng.Start.After(now)

	cfp, err := cfps.GetActive(ctx, conferenceID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up active CFP: %w", err)
	}

	if cfp == nil {
		cfp = &database.CallForPapers{
			ConferenceID: conferenceID,
			StartDate:    rng.Start,
			EndDate:      rng.End,
			Location:     rec.Location,
			Link:         rec.Link,
			AccessType:   rec.AccessType,
			Status:       status,
		}
		if err := cfps.Create(ctx, cfp); err != nil {
			return nil, false, fmt.Errorf("failed to create CFP: %w", err)
		}
		return cfp, true, nil
	}

	cfp.StartDate = rng.Start
	cfp.EndDate = rng.End
	cfp.Location = rec.Location
	cfp.Link = rec.Link
	cfp.AccessType = rec.AccessType
	cfp.Status = status
	if err := cfps.Update(ctx, cfp); err != nil {
		return nil, false, fmt.Errorf("failed to update CFP: %w", err)
	}
	return cfp, false, nil
}
