package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olympuslabs/crosscheck/internal/align"
)

// SaveReport persists one run: the summary row, the full report JSON and
// one row per case. Saving a run ID that already exists is silently
// ignored, so a retried save is idempotent.
func (s *Store) SaveReport(ctx context.Context, r *align.Report) error {
	createdAt, err := time.Parse(align.TimestampLayout, r.Timestamp)
	if err != nil {
		return fmt.Errorf("save report: parsing timestamp %q: %w", r.Timestamp, err)
	}

	reportJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, created_at, overall_score, compliance, primary_version, secondary_version, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.RunID,
		createdAt.Unix(),
		r.OverallScore,
		r.Compliance,
		r.Primary.Version,
		r.Secondary.Version,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	for i, result := range r.Results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_cases
			(run_id, seq, name, test_type, score, functional, performance, memory, hash_consistency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			r.RunID,
			i,
			result.TestName,
			result.TestType,
			result.Score,
			result.Functional.Pass,
			result.Performance.Pass,
			result.Memory.Pass,
			result.HashConsistency.Pass,
		)
		if err != nil {
			return fmt.Errorf("save report: case %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report: commit: %w", err)
	}

	return nil
}
