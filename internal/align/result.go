// Package align scores comparator verdicts into per-test results and
// aggregates them into an alignment report with a compliance tier.
package align

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/olympuslabs/crosscheck/internal/compare"
)

// ValidationResult is the scored outcome of one test case. Each dimension
// keeps the verdict and the evidence behind it.
type ValidationResult struct {
	TestName        string          `json:"test_name"`
	TestType        string          `json:"test_type"`
	Functional      compare.Verdict `json:"functional_alignment"`
	Performance     compare.Verdict `json:"performance_alignment"`
	Memory          compare.Verdict `json:"memory_alignment"`
	HashConsistency compare.Verdict `json:"hash_consistency"`
	// Score is the share of passing dimensions, 0 to 100 in steps of 25.
	Score           float64  `json:"overall_score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// FunctionalPass reports whether the functional dimension passed; the run
// exit code hinges on this across all results.
func (r ValidationResult) FunctionalPass() bool { return r.Functional.Pass }

// Scorer turns two metric maps into a scored ValidationResult.
type Scorer struct {
	thresholds compare.Thresholds
	logger     *slog.Logger
}

// NewScorer builds a scorer. A nil logger discards drift warnings.
func NewScorer(th compare.Thresholds, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scorer{thresholds: th, logger: logger}
}

// Score runs the four dimensions for one test case.
//
// The hash dimension only measures anything for hash-kind tests; for every
// other kind it records a pass with applicable=false so the 25-point share
// stays comparable across the catalogue. An error-form payload on either
// side fails the functional dimension before any kind dispatch.
func (s *Scorer) Score(name, testType string, kind compare.Kind, primary, secondary map[string]any) ValidationResult {
	var functional compare.Verdict
	if compare.HasError(primary) || compare.HasError(secondary) {
		functional = compare.Verdict{Pass: false, Evidence: errorEvidence(primary, secondary)}
	} else {
		functional = compare.Functional(kind, primary, secondary, s.thresholds)
	}

	performance := compare.ExecutionTime(primary, secondary, s.thresholds)
	if diff, ok := compare.PerformanceDiff(performance); ok && performance.Pass && diff > s.thresholds.WarnPerformanceDiff {
		s.logger.Warn("performance drift above comfort threshold",
			"test", name, "diff_percent", diff)
	}

	memory := compare.Memory(primary, secondary, s.thresholds)

	hash := compare.Verdict{Pass: true, Evidence: map[string]any{"applicable": false}}
	if kind == compare.KindHash {
		hash = compare.Hashes(primary, secondary, s.thresholds)
	}

	result := ValidationResult{
		TestName:        name,
		TestType:        testType,
		Functional:      functional,
		Performance:     performance,
		Memory:          memory,
		HashConsistency: hash,
		Score:           scoreOf(functional, performance, memory, hash),
	}
	result.Recommendations = recommend(result)
	return result
}

// FailedResult records a case the harness could not compare at all, for
// example when fixture generation failed. Every dimension fails with the
// same evidence.
func FailedResult(name, testType string, reason string) ValidationResult {
	failed := compare.Verdict{Pass: false, Evidence: map[string]any{"error": reason}}
	result := ValidationResult{
		TestName:        name,
		TestType:        testType,
		Functional:      failed,
		Performance:     failed,
		Memory:          failed,
		HashConsistency: failed,
		Score:           0,
	}
	result.Recommendations = recommend(result)
	return result
}

func scoreOf(verdicts ...compare.Verdict) float64 {
	passes := 0
	for _, v := range verdicts {
		if v.Pass {
			passes++
		}
	}
	return float64(passes) / float64(len(verdicts)) * 100
}

// recommend emits one remediation line per failing dimension. Wording and
// measured gaps feed the report's deduplicated recommendation list.
func recommend(r ValidationResult) []string {
	var recs []string
	if !r.Functional.Pass {
		recs = append(recs, "Fix functional misalignment - ensure both versions produce identical results")
	}
	if !r.Performance.Pass {
		diff, _ := compare.PerformanceDiff(r.Performance)
		recs = append(recs, fmt.Sprintf("Optimize performance - current difference: %.1f%%", diff))
	}
	if !r.Memory.Pass {
		diff, _ := compare.MemoryDiff(r.Memory)
		recs = append(recs, fmt.Sprintf("Optimize memory usage - current difference: %.1f%%", diff))
	}
	if !r.HashConsistency.Pass {
		recs = append(recs, "Fix hash consistency - ensure identical hash outputs")
	}
	return recs
}

func errorEvidence(primary, secondary map[string]any) map[string]any {
	evidence := map[string]any{"error": "implementation reported error"}
	if msg, ok := primary["error"]; ok {
		evidence["primary_error"] = msg
	}
	if msg, ok := secondary["error"]; ok {
		evidence["secondary_error"] = msg
	}
	return evidence
}
