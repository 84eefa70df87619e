// Package compare implements the alignment comparators: functional
// equivalence, hash consistency, execution time, and memory usage.
//
// Comparators are pure functions over two parsed metric maps. Each returns
// a Verdict with an evidence map that survives into the persisted report,
// so a failing run can be diagnosed without re-running the executables.
package compare

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind tags a test case with the functional comparator it needs. Dispatch
// is explicit rather than inferred from substrings in the test name.
type Kind int

const (
	// KindGeneric compares the shared key fields both sides report.
	KindGeneric Kind = iota
	// KindTransaction compares transaction counts and success rates.
	KindTransaction
	// KindBlock compares block counts and valid-block rates.
	KindBlock
	// KindHash compares sample hash sequences positionally.
	KindHash
)

func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindBlock:
		return "block"
	case KindHash:
		return "hash"
	default:
		return "generic"
	}
}

// Thresholds bound how far the two implementations may drift before a
// dimension fails.
type Thresholds struct {
	// MaxPerformanceDiff is the largest tolerated execution-time gap,
	// percent relative to the faster side.
	MaxPerformanceDiff float64 `json:"max_performance_diff"`
	// WarnPerformanceDiff marks gaps worth surfacing in logs even though
	// they still pass.
	WarnPerformanceDiff float64 `json:"warn_performance_diff"`
	// MaxMemoryDiff is the largest tolerated memory gap, percent relative
	// to the larger side.
	MaxMemoryDiff float64 `json:"max_memory_diff"`
	// MinHashMatchRate is the hash match percentage required to pass.
	MinHashMatchRate float64 `json:"min_hash_match_rate"`
	// FunctionalTolerance bounds relative drift of secondary functional
	// counters (success counts, valid blocks), percent.
	FunctionalTolerance float64 `json:"functional_tolerance"`
}

// DefaultThresholds returns the alignment gates used by the harness unless
// a run overrides them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxPerformanceDiff:  50,
		WarnPerformanceDiff: 20,
		MaxMemoryDiff:       30,
		MinHashMatchRate:    100,
		FunctionalTolerance: 5,
	}
}

// Verdict is one comparator's decision plus the measurements behind it.
type Verdict struct {
	Pass     bool           `json:"pass"`
	Evidence map[string]any `json:"evidence,omitempty"`
}

func pass(evidence map[string]any) Verdict {
	return Verdict{Pass: true, Evidence: evidence}
}

func fail(evidence map[string]any) Verdict {
	return Verdict{Pass: false, Evidence: evidence}
}

func failf(format string, args ...any) Verdict {
	return fail(map[string]any{"error": fmt.Sprintf(format, args...)})
}

// HasError reports whether a metrics map is in error form (the executable
// reported a failure instead of measurements).
func HasError(metrics map[string]any) bool {
	_, ok := metrics["error"]
	return ok
}

// numberAt reads a numeric metric, tolerating the integer types test
// constructors use alongside the float64 values JSON decoding produces.
// Missing or non-numeric values read as 0, matching the treatment of
// absent counters everywhere in the comparators.
func numberAt(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return 0
	}
}

// stringsAt reads a list-of-strings metric. A list with any non-string
// element reads as missing.
func stringsAt(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, ok := elem.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	default:
		return nil
	}
}

// sample returns at most n leading elements for evidence maps.
func sample(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// equalMetric compares one key field from both sides. Numeric values
// compare by value regardless of Go type; everything else compares
// structurally.
func equalMetric(a, b any) bool {
	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	if aNum && bNum {
		return af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// formatNum renders a measurement without exponent notation, trimming the
// fraction when it is integral.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
