package align

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	renderTitle = color.New(color.Bold)
	renderPass  = color.New(color.FgGreen)
	renderFail  = color.New(color.FgRed)
)

const renderWidth = 80

// Render writes the human-readable report. The layout serves operators at
// a terminal; machine consumers read the saved JSON instead.
func Render(w io.Writer, r *Report) {
	rule := strings.Repeat("=", renderWidth)
	thinRule := strings.Repeat("-", renderWidth)

	fmt.Fprintln(w, rule)
	renderTitle.Fprintln(w, "OLYMPUS DIFFERENTIAL ALIGNMENT REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run ID: %s\n", r.RunID)
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp)
	fmt.Fprintf(w, "Fixture Seed: %d\n", r.FixtureSeed)
	fmt.Fprintf(w, "Overall Alignment Score: %.1f%%\n", r.OverallScore)
	fmt.Fprintf(w, "Compliance Status: %s\n", r.Compliance)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "VERSION INFORMATION:")
	fmt.Fprintf(w, "  Primary:   %s (%s)\n", r.Primary.Version, r.Primary.Path)
	fmt.Fprintf(w, "  Secondary: %s (%s)\n", r.Secondary.Version, r.Secondary.Path)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "VALIDATION RESULTS:")
	fmt.Fprintln(w, thinRule)
	for _, result := range r.Results {
		fmt.Fprintf(w, "Test: %s\n", result.TestName)
		fmt.Fprintf(w, "  Overall Score: %.1f%%\n", result.Score)
		fmt.Fprintf(w, "  Functional: %s\n", mark(result.Functional.Pass))
		fmt.Fprintf(w, "  Performance: %s\n", mark(result.Performance.Pass))
		fmt.Fprintf(w, "  Memory: %s\n", mark(result.Memory.Pass))
		fmt.Fprintf(w, "  Hash Consistency: %s\n", mark(result.HashConsistency.Pass))
		if len(result.Recommendations) > 0 {
			fmt.Fprintf(w, "  Recommendations: %s\n", strings.Join(result.Recommendations, ", "))
		}
		fmt.Fprintln(w)
	}

	if len(r.CriticalIssues) > 0 {
		fmt.Fprintln(w, "CRITICAL ISSUES:")
		for _, issue := range r.CriticalIssues {
			fmt.Fprintf(w, "  - %s\n", renderFail.Sprint(issue))
		}
		fmt.Fprintln(w)
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "RECOMMENDATIONS:")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, rule)
}

func mark(pass bool) string {
	if pass {
		return renderPass.Sprint("PASS")
	}
	return renderFail.Sprint("FAIL")
}
