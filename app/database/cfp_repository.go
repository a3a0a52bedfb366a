package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type cfpRepository struct {
	db DBTX
}

var _ CFPRepository = (*cfpRepository)(nil)

func NewCFPRepository(db DBTX) CFPRepository {
	return &cfpRepository{db: db}
}

const cfpColumns = `id, conference_id, start_date, end_date,
	COALESCE(location, ''), COALESCE(link, ''), COALESCE(access_type, ''),
	status, created_at, updated_at`

func (r *cfpRepository) GetActive(ctx context.Context, conferenceID string) (*CallForPapers, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+cfpColumns+`
		FROM call_for_papers
		WHERE conference_id = ? AND status = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, conferenceID)

	return scanCFP(row)
}

func (r *cfpRepository) Create(ctx context.Context, cfp *CallForPapers) error {
	now := time.Now().UTC()
	if cfp.ID == "" {
		cfp.ID = uuid.NewString()
	}
	cfp.CreatedAt = now
	cfp.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO call_for_papers (
			id, conference_id, start_date, end_date,
			location, link, access_type, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, cfp.ID, cfp.ConferenceID, formatDay(cfp.StartDate), formatDay(cfp.EndDate),
		cfp.Location, cfp.Link, cfp.AccessType, cfp.Status,
		formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		return fmt.Errorf("failed to insert CFP: %w", err)
	}
	return nil
}

func (r *cfpRepository) Update(ctx context.Context, cfp *CallForPapers) error {
	now := time.Now().UTC()
	cfp.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		UPDATE call_for_papers
		SET start_date = ?, end_date = ?, location = ?, link = ?,
		    access_type = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, formatDay(cfp.StartDate), formatDay(cfp.EndDate), cfp.Location, cfp.Link,
		cfp.AccessType, cfp.Status, formatTimestamp(now), cfp.ID)
	if err != nil {
		return fmt.Errorf("failed to update CFP: %w", err)
	}
	return nil
}

func (r *cfpRepository) ListByConference(ctx context.Context, conferenceID string) ([]CallForPapers, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+cfpColumns+`
		FROM call_for_papers
		WHERE conference_id = ?
		ORDER BY created_at DESC
	`, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list CFPs: %w", err)
	}
	defer rows.Close()

	var cfps []CallForPapers
	for rows.Next() {
		cfp, err := scanCFPRow(rows)
		if err != nil {
			return nil, err
		}
		cfps = append(cfps, *cfp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating CFP rows: %w", err)
	}
	return cfps, nil
}

func (r *cfpRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM call_for_papers").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count CFPs: %w", err)
	}
	return count, nil
}

func (r *cfpRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM call_for_papers WHERE status = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active CFPs: %w", err)
	}
	return count, nil
}

func (r *cfpRepository) RefreshStatus(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE call_for_papers
		SET status = 0, updated_at = ?
		WHERE status = 1 AND start_date <= ?
	`, formatTimestamp(now), formatDay(now))
	if err != nil {
		return 0, fmt.Errorf("failed to refresh CFP status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCFP(row *sql.Row) (*CallForPapers, error) {
	cfp, err := scanCFPRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cfp, err
}

func scanCFPRow(row rowScanner) (*CallForPapers, error) {
	var cfp CallForPapers
	var startDate, endDate, createdAt, updatedAt string

	err := row.Scan(&cfp.ID, &cfp.ConferenceID, &startDate, &endDate,
		&cfp.Location, &cfp.Link, &cfp.AccessType, &cfp.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan CFP row: %w", err)
	}

	if cfp.StartDate, err = parseDay(startDate); err != nil {
		return nil, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if cfp.EndDate, err = parseDay(endDate); err != nil {
		return nil, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if cfp.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if cfp.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &cfp, nil
}
