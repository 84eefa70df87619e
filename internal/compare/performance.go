package compare

// ExecutionTime compares wall-clock execution, measured relative to the
// faster side. A zero reading on either side means the measurement never
// happened and fails immediately rather than producing a spurious ratio.
func ExecutionTime(primary, secondary map[string]any, th Thresholds) Verdict {
	primaryTime := numberAt(primary, "execution_time_ms")
	secondaryTime := numberAt(secondary, "execution_time_ms")
	if primaryTime == 0 || secondaryTime == 0 {
		return failf("invalid execution times")
	}

	var diff float64
	var faster string
	if primaryTime < secondaryTime {
		diff = (secondaryTime - primaryTime) / primaryTime * 100
		faster = "primary"
	} else {
		diff = (primaryTime - secondaryTime) / secondaryTime * 100
		faster = "secondary"
	}

	return Verdict{
		Pass: diff <= th.MaxPerformanceDiff,
		Evidence: map[string]any{
			"primary_time_ms":          primaryTime,
			"secondary_time_ms":        secondaryTime,
			"performance_diff_percent": diff,
			"faster_version":           faster,
		},
	}
}

// Memory compares estimated memory footprints relative to the larger
// side. Zero readings fail the same way zero execution times do.
func Memory(primary, secondary map[string]any, th Thresholds) Verdict {
	primaryMem := numberAt(primary, "estimated_memory_kb")
	secondaryMem := numberAt(secondary, "estimated_memory_kb")
	if primaryMem == 0 || secondaryMem == 0 {
		return failf("invalid memory usage data")
	}

	diff := primaryMem - secondaryMem
	if diff < 0 {
		diff = -diff
	}
	diff = diff / max(primaryMem, secondaryMem) * 100

	return Verdict{
		Pass: diff <= th.MaxMemoryDiff,
		Evidence: map[string]any{
			"primary_memory_kb":   primaryMem,
			"secondary_memory_kb": secondaryMem,
			"memory_diff_percent": diff,
		},
	}
}

// PerformanceDiff extracts the measured execution-time gap from a time
// verdict's evidence, for warning logs and summaries.
func PerformanceDiff(v Verdict) (float64, bool) {
	diff, ok := v.Evidence["performance_diff_percent"].(float64)
	return diff, ok
}

// MemoryDiff extracts the measured memory gap from a memory verdict's
// evidence.
func MemoryDiff(v Verdict) (float64, bool) {
	diff, ok := v.Evidence["memory_diff_percent"].(float64)
	return diff, ok
}
