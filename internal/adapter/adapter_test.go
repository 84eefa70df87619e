package adapter

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olympuslabs/crosscheck/internal/testutil"
	"github.com/olympuslabs/crosscheck/internal/workload"
)

func testFixture(t *testing.T) *workload.Fixture {
	t.Helper()

	cfg := workload.DefaultConfig()
	cfg.TransactionCount = 5
	cfg.BlockCount = 2
	seed := uint64(7)
	cfg.Seed = &seed

	gen, err := workload.NewGenerator(cfg)
	require.NoError(t, err)
	return gen.Fixture()
}

func newAdapter(t *testing.T, path string, timeout time.Duration) *Adapter {
	t.Helper()

	a, err := New(Config{
		Label:   "primary",
		Path:    path,
		Timeout: timeout,
		TempDir: t.TempDir(),
	})
	require.NoError(t, err)
	return a
}

func TestNewRejectsEmptyConfig(t *testing.T) {
	_, err := New(Config{Path: "/bin/true"})
	require.Error(t, err)

	_, err = New(Config{Label: "primary"})
	require.Error(t, err)
}

func TestInvokeParsesResultPayload(t *testing.T) {
	stub := testutil.StubExecutable(t, `
[ -f "$1" ] || { echo "fixture file missing" >&2; exit 3; }
printf '{"execution_time_ms": 4.5, "transaction_count": 5, "argv_test_type": "%s"}' "$2"
`)
	a := newAdapter(t, stub, time.Minute)

	outcome := a.Invoke(context.Background(), testFixture(t), "transaction_creation")

	require.False(t, outcome.Failed(), "outcome error: %v", outcome.Err)
	assert.Equal(t, 4.5, outcome.Metrics["execution_time_ms"])
	assert.Equal(t, float64(5), outcome.Metrics["transaction_count"])
	assert.Equal(t, "transaction_creation", outcome.Metrics["argv_test_type"])
}

func TestInvokeRemovesFixtureFile(t *testing.T) {
	stub := testutil.StubExecutable(t, `printf '{"execution_time_ms": 1.0}'`)

	tempDir := t.TempDir()
	a, err := New(Config{Label: "primary", Path: stub, TempDir: tempDir})
	require.NoError(t, err)

	outcome := a.Invoke(context.Background(), testFixture(t), "block_hashing")
	require.False(t, outcome.Failed())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "fixture file must be removed after invocation")
}

func TestInvokeRemovesFixtureFileOnFailure(t *testing.T) {
	stub := testutil.StubExecutable(t, `exit 3`)

	tempDir := t.TempDir()
	a, err := New(Config{Label: "primary", Path: stub, TempDir: tempDir})
	require.NoError(t, err)

	outcome := a.Invoke(context.Background(), testFixture(t), "consensus")
	require.True(t, outcome.Failed())

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInvokeNonZeroExit(t *testing.T) {
	stub := testutil.StubExecutable(t, `
echo "fixture rejected" >&2
exit 3
`)
	a := newAdapter(t, stub, time.Minute)

	outcome := a.Invoke(context.Background(), testFixture(t), "evm_execution")

	require.True(t, outcome.Failed())
	assert.Equal(t, ErrExit, outcome.Err.Category)
	assert.Contains(t, outcome.Err.Message, "status 3")
	assert.Contains(t, outcome.Err.Detail, "fixture rejected")
}

func TestInvokeTimeout(t *testing.T) {
	stub := testutil.StubExecutable(t, `exec sleep 5`)
	a := newAdapter(t, stub, 100*time.Millisecond)

	outcome := a.Invoke(context.Background(), testFixture(t), "consensus")

	require.True(t, outcome.Failed())
	assert.Equal(t, ErrTimeout, outcome.Err.Category)
	assert.Contains(t, outcome.Err.Message, "timed out")
}

func TestInvokeLaunchFailure(t *testing.T) {
	a, err := New(Config{
		Label:   "primary",
		Path:    "/nonexistent/olympus-build",
		TempDir: t.TempDir(),
	})
	require.NoError(t, err)

	outcome := a.Invoke(context.Background(), testFixture(t), "transaction_creation")

	require.True(t, outcome.Failed())
	assert.Equal(t, ErrLaunch, outcome.Err.Category)
}

func TestInvokeMalformedStdout(t *testing.T) {
	stub := testutil.StubExecutable(t, `echo "segmentation fault (core dumped)"`)
	a := newAdapter(t, stub, time.Minute)

	outcome := a.Invoke(context.Background(), testFixture(t), "memory_usage")

	require.True(t, outcome.Failed())
	assert.Equal(t, ErrParse, outcome.Err.Category)
	assert.Contains(t, outcome.Err.Detail, "segmentation fault")
}

func TestInvokeContractViolation(t *testing.T) {
	stub := testutil.StubExecutable(t, `printf '{"execution_time_ms": -10}'`)
	a := newAdapter(t, stub, time.Minute)

	outcome := a.Invoke(context.Background(), testFixture(t), "signature_verification")

	require.True(t, outcome.Failed())
	assert.Equal(t, ErrSchema, outcome.Err.Category)
}

func TestOutcomeResultMap(t *testing.T) {
	ok := Outcome{Metrics: map[string]any{"transaction_count": 5.0}}
	assert.Equal(t, map[string]any{"transaction_count": 5.0}, ok.ResultMap())

	failed := Outcome{Err: &InvokeError{Category: ErrExit, Message: "exited with status 3", Detail: "boom"}}
	m := failed.ResultMap()
	assert.Equal(t, "exit: exited with status 3", m["error"])
	assert.Equal(t, "boom", m["detail"])
}

func TestProbeReadsVersion(t *testing.T) {
	stub := testutil.StubExecutable(t, `
if [ "$1" = "--version" ]; then
  echo "olympus 1.4.2 (release)"
  exit 0
fi
exit 1
`)
	a := newAdapter(t, stub, time.Minute)

	info := a.Probe(context.Background())

	assert.Equal(t, "olympus 1.4.2 (release)", info.Version)
	assert.Equal(t, "primary", info.Label)
	assert.Nil(t, info.BuildTime)
}

func TestProbeFallsBackToFileMetadata(t *testing.T) {
	stub := testutil.StubExecutable(t, `exit 1`)
	a := newAdapter(t, stub, time.Minute)

	info := a.Probe(context.Background())

	assert.Equal(t, "Unknown", info.Version)
	require.NotNil(t, info.BuildTime)
	assert.Positive(t, info.SizeBytes)
}

func TestProbeMissingExecutable(t *testing.T) {
	a, err := New(Config{Label: "secondary", Path: "/nonexistent/olympus-build"})
	require.NoError(t, err)

	info := a.Probe(context.Background())

	assert.Equal(t, "Unknown", info.Version)
	assert.Nil(t, info.BuildTime)
	assert.Zero(t, info.SizeBytes)
}
