package database

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories can run
// standalone or inside a reconciliation transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	dayLayout       = "2006-01-02"
	timestampLayout = time.RFC3339
)

func formatDay(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(dayLayout, s)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}
