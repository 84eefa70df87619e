package align

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/olympuslabs/crosscheck/internal/adapter"
)

// Compliance tiers, derived from the overall alignment score.
const (
	ComplianceExcellent        = "EXCELLENT"
	ComplianceGood             = "GOOD"
	ComplianceAcceptable       = "ACCEPTABLE"
	ComplianceNeedsImprovement = "NEEDS_IMPROVEMENT"
)

// criticalScore is the per-test score below which a case is listed among
// the report's critical issues.
const criticalScore = 80

// TimestampLayout is the wall-clock format reports carry. Consumers that
// need an instant back (the history store) parse it with this layout.
const TimestampLayout = "2006-01-02 15:04:05"

// Report is the aggregate outcome of one differential run.
type Report struct {
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	// FixtureSeed reproduces the run's workloads byte for byte.
	FixtureSeed     uint64             `json:"fixture_seed"`
	Primary         adapter.Info       `json:"primary_version_info"`
	Secondary       adapter.Info       `json:"secondary_version_info"`
	Results         []ValidationResult `json:"validation_results"`
	OverallScore    float64            `json:"overall_alignment_score"`
	CriticalIssues  []string           `json:"critical_issues"`
	Recommendations []string           `json:"recommendations"`
	Compliance      string             `json:"compliance_status"`
}

// AllFunctionalPass reports whether every case passed the functional
// dimension. This decides the run command's exit code.
func (r *Report) AllFunctionalPass() bool {
	for _, result := range r.Results {
		if !result.FunctionalPass() {
			return false
		}
	}
	return true
}

// ReportBuilder assembles reports. The zero value uses UUIDv7 run IDs and
// the wall clock; tests swap in fixed generators.
type ReportBuilder struct {
	IDs IDGenerator
	Now func() time.Time
}

// Build aggregates per-case results: overall score is the mean case score,
// cases under 80 become critical issues, and case recommendations are
// deduplicated and sorted for stable output.
func (b ReportBuilder) Build(primary, secondary adapter.Info, seed uint64, results []ValidationResult) *Report {
	ids := b.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	now := b.Now
	if now == nil {
		now = time.Now
	}

	report := &Report{
		RunID:       ids.NewID(),
		Timestamp:   now().Format(TimestampLayout),
		FixtureSeed: seed,
		Primary:     primary,
		Secondary:   secondary,
		Results:     results,
	}

	total := 0.0
	seen := make(map[string]bool)
	for _, result := range results {
		total += result.Score
		if result.Score < criticalScore {
			report.CriticalIssues = append(report.CriticalIssues,
				fmt.Sprintf("%s: Score %.1f%%", result.TestName, result.Score))
		}
		for _, rec := range result.Recommendations {
			if !seen[rec] {
				seen[rec] = true
				report.Recommendations = append(report.Recommendations, rec)
			}
		}
	}
	if len(results) > 0 {
		report.OverallScore = total / float64(len(results))
	}
	slices.Sort(report.Recommendations)

	report.Compliance = ComplianceStatus(report.OverallScore)
	return report
}

// ComplianceStatus maps an overall score to its tier. Total over all
// float inputs.
func ComplianceStatus(score float64) string {
	switch {
	case score >= 95:
		return ComplianceExcellent
	case score >= 85:
		return ComplianceGood
	case score >= 70:
		return ComplianceAcceptable
	default:
		return ComplianceNeedsImprovement
	}
}

// Save writes the report as indented JSON. An empty path defaults to
// alignment_report_<unix>.json in the working directory. Returns the path
// written.
func (r *Report) Save(path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("alignment_report_%d.json", time.Now().Unix())
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
