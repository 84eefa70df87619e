package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olympuslabs/crosscheck/internal/align"
)

// ErrRunNotFound reports a run ID with no persisted report.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit bounds ListRuns when the caller passes no positive limit.
const DefaultListLimit = 20

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID               string    `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	OverallScore     float64   `json:"overall_score"`
	Compliance       string    `json:"compliance"`
	PrimaryVersion   string    `json:"primary_version"`
	SecondaryVersion string    `json:"secondary_version"`
	Cases            int       `json:"cases"`
}

// ListRuns returns the most recent runs, newest first. Ties on created_at
// break by id so the order is deterministic.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.overall_score, r.compliance,
		       r.primary_version, r.secondary_version, COUNT(c.run_id)
		FROM runs r
		LEFT JOIN run_cases c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		var createdAt int64
		err := rows.Scan(&run.ID, &createdAt, &run.OverallScore, &run.Compliance,
			&run.PrimaryVersion, &run.SecondaryVersion, &run.Cases)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt = time.Unix(createdAt, 0).UTC()
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Return empty slice instead of nil
	if runs == nil {
		runs = []RunSummary{}
	}

	return runs, nil
}

// GetReport loads the full report for one run.
// Returns an error wrapping ErrRunNotFound when the ID is unknown.
func (s *Store) GetReport(ctx context.Context, id string) (*align.Report, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT report_json FROM runs WHERE id = ?
	`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %q: %w", id, err)
	}

	var report align.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode run %q: %w", id, err)
	}

	return &report, nil
}
