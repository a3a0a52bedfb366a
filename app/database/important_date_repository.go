package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type importantDateRepository struct {
	db DBTX
}

var _ ImportantDateRepository = (*importantDateRepository)(nil)

func NewImportantDateRepository(db DBTX) ImportantDateRepository {
	return &importantDateRepository{db: db}
}

func (r *importantDateRepository) Get(ctx context.Context, cfpID, dateType string) (*ImportantDate, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, cfp_id, date_type, date_value, status, created_at, updated_at
		FROM important_dates
		WHERE cfp_id = ? AND date_type = ?
	`, cfpID, dateType)

	d, err := scanImportantDate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *importantDateRepository) Upsert(ctx context.Context, cfpID, dateType string, value time.Time, status bool) (*ImportantDate, error) {
	existing, err := r.Get(ctx, cfpID, dateType)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing important date: %w", err)
	}

	now := time.Now().UTC()
	if existing != nil {
		_, err = r.db.ExecContext(ctx, `
			UPDATE important_dates
			SET date_value = ?, status = ?, updated_at = ?
			WHERE cfp_id = ? AND date_type = ?
		`, formatDay(value), status, formatTimestamp(now), cfpID, dateType)
		if err != nil {
			return nil, fmt.Errorf("failed to update important date: %w", err)
		}

		existing.DateValue = value
		existing.Status = status
		existing.UpdatedAt = now
		return existing, nil
	}

	d := &ImportantDate{
		ID:        uuid.NewString(),
		CFPID:     cfpID,
		DateType:  dateType,
		DateValue: value,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO important_dates (id, cfp_id, date_type, date_value, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.CFPID, d.DateType, formatDay(d.DateValue), d.Status,
		formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert important date: %w", err)
	}
	return d, nil
}

func (r *importantDateRepository) ListByCFP(ctx context.Context, cfpID string) ([]ImportantDate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cfp_id, date_type, date_value, status, created_at, updated_at
		FROM important_dates
		WHERE cfp_id = ?
		ORDER BY date_value
	`, cfpID)
	if err != nil {
		return nil, fmt.Errorf("failed to list important dates: %w", err)
	}
	defer rows.Close()

	var dates []ImportantDate
	for rows.Next() {
		d, err := scanImportantDate(rows)
		if err != nil {
			return nil, err
		}
		dates = append(dates, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating important date rows: %w", err)
	}
	return dates, nil
}

func (r *importantDateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM important_dates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count important dates: %w", err)
	}
	return count, nil
}

func (r *importantDateRepository) CountUpcoming(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM important_dates WHERE status = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming important dates: %w", err)
	}
	return count, nil
}

func (r *importantDateRepository) RefreshStatus(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE important_dates
		SET status = 0, updated_at = ?
		WHERE status = 1 AND date_value <= ?
	`, formatTimestamp(now), formatDay(now))
	if err != nil {
		return 0, fmt.Errorf("failed to refresh important date status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func scanImportantDate(row rowScanner) (*ImportantDate, error) {
	var d ImportantDate
	var dateValue, createdAt, updatedAt string

	err := row.Scan(&d.ID, &d.CFPID, &d.DateType, &dateValue, &d.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan important date row: %w", err)
	}

	if d.DateValue, err = parseDay(dateValue); err != nil {
		return nil, fmt.Errorf("failed to parse date_value: %w", err)
	}
	if d.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &d, nil
}
