package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type conferenceRepository struct {
	db DBTX
}

var _ ConferenceRepository = (*conferenceRepository)(nil)

func NewConferenceRepository(db DBTX) ConferenceRepository {
	return &conferenceRepository{db: db}
}

func (r *conferenceRepository) Upsert(ctx context.Context, name, acronym string) (*Conference, error) {
	existing, err := r.GetByNaturalKey(ctx, name, acronym)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing conference: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	conf := &Conference{
		ID:        uuid.NewString(),
		Name:      name,
		Acronym:   acronym,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conferences (id, name, acronym, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, conf.ID, conf.Name, conf.Acronym, formatTimestamp(now), formatTimestamp(now))
	if err != nil {
		return nil, fmt.Errorf("failed to insert conference: %w", err)
	}

	return conf, nil
}

func (r *conferenceRepository) GetByNaturalKey(ctx context.Context, name, acronym string) (*Conference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, acronym, created_at, updated_at
		FROM conferences
		WHERE name = ? AND acronym = ?
	`, name, acronym)

	return scanConference(row)
}

func (r *conferenceRepository) GetByAcronym(ctx context.Context, acronym string) (*Conference, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, acronym, created_at, updated_at
		FROM conferences
		WHERE acronym = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, acronym)

	return scanConference(row)
}

func (r *conferenceRepository) List(ctx context.Context) ([]Conference, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, acronym, created_at, updated_at
		FROM conferences
		ORDER BY acronym
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conferences: %w", err)
	}
	defer rows.Close()

	var conferences []Conference
	for rows.Next() {
		var conf Conference
		var createdAt, updatedAt string
		if err := rows.Scan(&conf.ID, &conf.Name, &conf.Acronym, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conference row: %w", err)
		}
		if conf.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if conf.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		conferences = append(conferences, conf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conference rows: %w", err)
	}
	return conferences, nil
}

func (r *conferenceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conferences").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count conferences: %w", err)
	}
	return count, nil
}

func scanConference(row *sql.Row) (*Conference, error) {
	var conf Conference
	var createdAt, updatedAt string

	err := row.Scan(&conf.ID, &conf.Name, &conf.Acronym, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conference: %w", err)
	}

	if conf.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if conf.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &conf, nil
}
