package compare

// Functional dispatches to the functional comparator matching the test
// kind.
func Functional(kind Kind, primary, secondary map[string]any, th Thresholds) Verdict {
	switch kind {
	case KindHash:
		return Hashes(primary, secondary, th)
	case KindTransaction:
		return Transactions(primary, secondary, th)
	case KindBlock:
		return Blocks(primary, secondary, th)
	default:
		return Generic(primary, secondary)
	}
}

// Transactions verifies transaction processing equivalence: counts must
// match exactly, success counters may drift within the functional
// tolerance.
func Transactions(primary, secondary map[string]any, th Thresholds) Verdict {
	primaryCount := numberAt(primary, "transaction_count")
	secondaryCount := numberAt(secondary, "transaction_count")
	if primaryCount != secondaryCount {
		return failf("transaction count mismatch: primary=%s secondary=%s",
			formatNum(primaryCount), formatNum(secondaryCount))
	}

	primarySuccess := numberAt(primary, "success_count")
	secondarySuccess := numberAt(secondary, "success_count")
	diff := relativeDiff(primarySuccess, secondarySuccess)

	return Verdict{
		Pass: diff < th.FunctionalTolerance,
		Evidence: map[string]any{
			"transaction_count_match": true,
			"primary_success_count":   primarySuccess,
			"secondary_success_count": secondarySuccess,
			"success_rate_diff":       diff,
		},
	}
}

// Blocks verifies block processing equivalence: counts must match exactly,
// valid-block counters may drift within the functional tolerance.
func Blocks(primary, secondary map[string]any, th Thresholds) Verdict {
	primaryCount := numberAt(primary, "block_count")
	secondaryCount := numberAt(secondary, "block_count")
	if primaryCount != secondaryCount {
		return failf("block count mismatch: primary=%s secondary=%s",
			formatNum(primaryCount), formatNum(secondaryCount))
	}

	primaryValid := numberAt(primary, "valid_blocks")
	secondaryValid := numberAt(secondary, "valid_blocks")
	diff := relativeDiff(primaryValid, secondaryValid)

	return Verdict{
		Pass: diff < th.FunctionalTolerance,
		Evidence: map[string]any{
			"block_count_match":      true,
			"primary_valid_blocks":   primaryValid,
			"secondary_valid_blocks": secondaryValid,
			"valid_rate_diff":        diff,
		},
	}
}

// Hashes compares sample hash sequences positionally up to the shorter
// length. Both sides must report hashes; the match rate has to reach the
// configured minimum (100 by default, meaning any divergent hash fails).
func Hashes(primary, secondary map[string]any, th Thresholds) Verdict {
	primaryHashes := stringsAt(primary, "sample_hashes")
	secondaryHashes := stringsAt(secondary, "sample_hashes")
	if len(primaryHashes) == 0 || len(secondaryHashes) == 0 {
		return failf("missing hash results")
	}

	total := min(len(primaryHashes), len(secondaryHashes))
	matches := 0
	for i := 0; i < total; i++ {
		if primaryHashes[i] == secondaryHashes[i] {
			matches++
		}
	}
	matchRate := float64(matches) / float64(total) * 100

	return Verdict{
		Pass: matchRate >= th.MinHashMatchRate,
		Evidence: map[string]any{
			"matches":          matches,
			"total":            total,
			"match_rate":       matchRate,
			"primary_hashes":   sample(primaryHashes, 3),
			"secondary_hashes": sample(secondaryHashes, 3),
		},
	}
}

// genericKeyFields are the counters and result lists compared when a test
// has no dedicated functional comparator. A field participates only when
// both sides report it.
var genericKeyFields = []string{
	"transaction_count",
	"block_count",
	"hash_results",
	"signature_results",
}

// Generic verifies the shared key fields match. An error-form payload on
// either side fails outright.
func Generic(primary, secondary map[string]any) Verdict {
	if HasError(primary) {
		return failf("primary reported error: %v", primary["error"])
	}
	if HasError(secondary) {
		return failf("secondary reported error: %v", secondary["error"])
	}

	compared := make([]string, 0, len(genericKeyFields))
	for _, field := range genericKeyFields {
		primaryVal, inPrimary := primary[field]
		secondaryVal, inSecondary := secondary[field]
		if !inPrimary || !inSecondary {
			continue
		}
		compared = append(compared, field)
		if !equalMetric(primaryVal, secondaryVal) {
			return fail(map[string]any{
				"error":     "key field mismatch",
				"field":     field,
				"primary":   primaryVal,
				"secondary": secondaryVal,
			})
		}
	}

	return pass(map[string]any{"compared_fields": compared})
}

// relativeDiff is |a-b| relative to the larger magnitude, in percent. The
// denominator floors at 1 so two zero counters read as aligned.
func relativeDiff(a, b float64) float64 {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff / max(a, b, 1) * 100
}
