package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Submission outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// SubmissionMetric records one gate submission.
type SubmissionMetric struct {
	Outcome       string
	Retries       int
	BaseVersion   int64
	ResultVersion int64
	LatencyMS     int64
	Timestamp     time.Time
}

// Store handles persistence of sync metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m SubmissionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_metrics (outcome, retries, base_version, result_version, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.Outcome, m.Retries, m.BaseVersion, m.ResultVersion, m.LatencyMS, ts)
	if err != nil {
		return fmt.Errorf("failed to insert sync metric: %w", err)
	}
	return nil
}

// DailySummary represents submission totals for a single day.
type DailySummary struct {
	Date      string
	Accepted  int
	Conflicts int
	Errors    int
}

// Summarize returns per-day totals for the last N days, newest first.
func (s *Store) Summarize(ctx context.Context, days int) ([]DailySummary, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(timestamp) AS day,
		       SUM(CASE WHEN outcome = 'accepted' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'conflict' THEN 1 ELSE 0 END),
		       SUM(CASE WHEN outcome = 'error' THEN 1 ELSE 0 END)
		FROM sync_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync metrics: %w", err)
	}
	defer rows.Close()

	var out []DailySummary
	for rows.Next() {
		var d DailySummary
		if err := rows.Scan(&d.Date, &d.Accepted, &d.Conflicts, &d.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan sync metric row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cleanup removes records older than the given number of days and returns
// how many were deleted.
func (s *Store) Cleanup(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res, err := s.db.ExecContext(ctx, "DELETE FROM sync_metrics WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old sync metrics: %w", err)
	}
	return res.RowsAffected()
}
