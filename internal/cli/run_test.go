package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olympuslabs/crosscheck/internal/align"
	"github.com/olympuslabs/crosscheck/internal/history"
	"github.com/olympuslabs/crosscheck/internal/testutil"
)

// disableColor forces plain report rendering so output assertions do not
// depend on whether the test runs under a TTY.
func disableColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

// healthyScript answers every test type with fixed metrics, so two copies
// of it always align.
func healthyScript() string {
	return `if [ "$1" = "--version" ]; then
  echo "olympus-stub 1.0.0"
  exit 0
fi
case "$2" in
block_hashing)
  echo '{"execution_time_ms": 12.5, "block_count": 3, "valid_blocks": 3, "sample_hashes": ["1a2b", "3c4d"], "estimated_memory_kb": 256}'
  ;;
consensus)
  echo '{"execution_time_ms": 18.0, "block_count": 3, "valid_blocks": 3, "estimated_memory_kb": 300}'
  ;;
*)
  echo '{"execution_time_ms": 10.0, "transaction_count": 10, "success_count": 10, "estimated_memory_kb": 512}'
  ;;
esac`
}

// brokenScript diverges from healthyScript on successes, one sample hash
// and one valid block.
func brokenScript() string {
	return `if [ "$1" = "--version" ]; then
  echo "olympus-stub 1.0.1"
  exit 0
fi
case "$2" in
block_hashing)
  echo '{"execution_time_ms": 12.5, "block_count": 3, "valid_blocks": 3, "sample_hashes": ["1a2b", "ffff"], "estimated_memory_kb": 256}'
  ;;
consensus)
  echo '{"execution_time_ms": 18.0, "block_count": 3, "valid_blocks": 2, "estimated_memory_kb": 300}'
  ;;
*)
  echo '{"execution_time_ms": 10.0, "transaction_count": 10, "success_count": 8, "estimated_memory_kb": 512}'
  ;;
esac`
}

func runCommandArgs(primary, secondary, out string, extra ...string) []string {
	args := []string{
		"--primary", primary,
		"--secondary", secondary,
		"--seed", "42",
		"--out", out,
	}
	return append(args, extra...)
}

func readSavedReport(t *testing.T, path string) *align.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report align.Report
	require.NoError(t, json.Unmarshal(data, &report))
	return &report
}

func TestRunCommandMissingFlags(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s)")
}

func TestRunCommandMissingExecutable(t *testing.T) {
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--primary", "/nonexistent/olympus-c", "--secondary", "/nonexistent/olympus-rs"})

	err := cmd.Execute()
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.Contains(t, err.Error(), "primary executable not found")
}

func TestRunCommandAligned(t *testing.T) {
	disableColor(t)
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, healthyScript())
	reportPath := filepath.Join(t.TempDir(), "report.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath))

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "OLYMPUS DIFFERENTIAL ALIGNMENT REPORT")
	assert.Contains(t, output, "Compliance Status: EXCELLENT")
	assert.Contains(t, output, "Report saved to: "+reportPath)

	report := readSavedReport(t, reportPath)
	assert.Len(t, report.Results, 7)
	assert.Equal(t, 100.0, report.OverallScore)
	assert.Equal(t, uint64(42), report.FixtureSeed)
}

func TestRunCommandDivergent(t *testing.T) {
	disableColor(t)
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, brokenScript())
	reportPath := filepath.Join(t.TempDir(), "report.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath))

	err := cmd.Execute()
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, err.Error(), "3 case(s) failed functional alignment")

	// The report still renders in full before the failure verdict.
	assert.Contains(t, buf.String(), "CRITICAL ISSUES:")
	assert.Contains(t, buf.String(), "Report saved to: "+reportPath)
}

func TestRunCommandFilter(t *testing.T) {
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, healthyScript())
	reportPath := filepath.Join(t.TempDir(), "report.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath, "--filter", "block_*"))

	err := cmd.Execute()
	require.NoError(t, err)

	report := readSavedReport(t, reportPath)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "Block Hashing Test", report.Results[0].TestName)
}

func TestRunCommandJSONFormat(t *testing.T) {
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, healthyScript())
	reportPath := filepath.Join(t.TempDir(), "report.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath))

	err := cmd.Execute()
	require.NoError(t, err)

	var response struct {
		Status string `json:"status"`
		Data   struct {
			Report     align.Report `json:"report"`
			ReportPath string       `json:"report_path"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, reportPath, response.Data.ReportPath)
	assert.Equal(t, "EXCELLENT", response.Data.Report.Compliance)
}

func TestRunCommandJSONFormatDivergent(t *testing.T) {
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, brokenScript())
	reportPath := filepath.Join(t.TempDir(), "report.json")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath))

	err := cmd.Execute()
	require.Error(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_ALIGNMENT_FAILED", response.Error.Code)
}

func TestRunCommandRecordsHistory(t *testing.T) {
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, healthyScript())
	tmpDir := t.TempDir()
	reportPath := filepath.Join(tmpDir, "report.json")
	dbPath := filepath.Join(tmpDir, "history.db")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(runCommandArgs(primary, secondary, reportPath, "--db", dbPath))

	err := cmd.Execute()
	require.NoError(t, err)

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "EXCELLENT", runs[0].Compliance)
	assert.Equal(t, 7, runs[0].Cases)
}

func TestRunCommandBadConfig(t *testing.T) {
	primary := testutil.StubExecutable(t, healthyScript())
	secondary := testutil.StubExecutable(t, healthyScript())

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--primary", primary,
		"--secondary", secondary,
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
	})

	err := cmd.Execute()
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.Contains(t, err.Error(), "loading workload config")
}

func TestRunHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRunCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Exit codes:")
	assert.Contains(t, output, "--primary")
	assert.Contains(t, output, "--secondary")
	assert.Contains(t, output, "--filter")
}
