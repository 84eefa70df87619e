package align

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"

	"github.com/olympuslabs/crosscheck/internal/adapter"
	"github.com/olympuslabs/crosscheck/internal/compare"
	"github.com/olympuslabs/crosscheck/internal/testutil"
)

func TestRenderGolden(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = old })

	scorer := NewScorer(compare.DefaultThresholds(), nil)

	txResult := scorer.Score("Transaction Creation Performance Test", "transaction_creation",
		compare.KindTransaction,
		map[string]any{
			"transaction_count":   1000,
			"success_count":       1000,
			"execution_time_ms":   115.2,
			"estimated_memory_kb": 2048,
		},
		map[string]any{
			"transaction_count":   1000,
			"success_count":       1000,
			"execution_time_ms":   120.5,
			"estimated_memory_kb": 2156,
		})

	evmResult := scorer.Score("EVM Execution Test", "evm_execution",
		compare.KindGeneric,
		map[string]any{
			"transaction_count":   1000,
			"execution_time_ms":   500.0,
			"estimated_memory_kb": 2048,
		},
		map[string]any{
			"transaction_count":   1000,
			"execution_time_ms":   120.5,
			"estimated_memory_kb": 2156,
		})

	b := &ReportBuilder{
		IDs: testutil.NewFixedIDGenerator("0192b2f0-0000-7000-8000-000000000001"),
		Now: func() time.Time { return time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC) },
	}
	report := b.Build(
		adapter.Info{Label: "primary", Path: "bin/olympus-c", Version: "olympus-c 3.1.0"},
		adapter.Info{Label: "secondary", Path: "bin/olympus-rs", Version: "olympus-rs 3.1.0"},
		42,
		[]ValidationResult{txResult, evmResult},
	)

	var buf bytes.Buffer
	Render(&buf, report)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "alignment_report", buf.Bytes())
}
