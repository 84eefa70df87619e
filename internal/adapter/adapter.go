// Package adapter drives one implementation under test through the
// file + argv + stdout contract.
//
// An invocation writes the fixture to a temp file, runs
// <executable> <fixture-file> <test-type>, and parses the JSON result from
// stdout. Process failures never surface as Go errors: they are folded
// into error-form Outcomes so a crashing executable reads as misalignment
// evidence, not as a harness fault.
package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olympuslabs/crosscheck/internal/canon"
	"github.com/olympuslabs/crosscheck/internal/contract"
	"github.com/olympuslabs/crosscheck/internal/workload"
)

const (
	// DefaultRunTimeout bounds one test invocation.
	DefaultRunTimeout = 300 * time.Second
	// probeTimeout bounds the --version probe.
	probeTimeout = 10 * time.Second
)

// ErrorCategory classifies how an invocation failed.
type ErrorCategory string

const (
	// ErrLaunch covers failures before the executable produced anything:
	// fixture serialization, temp file writes, process start.
	ErrLaunch ErrorCategory = "launch"
	// ErrTimeout means the run deadline elapsed and the process was killed.
	ErrTimeout ErrorCategory = "timeout"
	// ErrExit means the process finished with a non-zero status.
	ErrExit ErrorCategory = "exit"
	// ErrParse means stdout was not a JSON object.
	ErrParse ErrorCategory = "parse"
	// ErrSchema means stdout parsed but violated the result contract.
	ErrSchema ErrorCategory = "schema"
)

// InvokeError describes a failed invocation.
type InvokeError struct {
	Category ErrorCategory
	Message  string
	// Detail carries supporting text: stderr, the offending stdout
	// prefix, or the schema violation.
	Detail string
}

func (e *InvokeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Outcome is the result of one invocation. Exactly one of Metrics and Err
// is set.
type Outcome struct {
	Metrics map[string]any
	Err     *InvokeError
}

// Failed reports whether the invocation produced no usable metrics.
func (o Outcome) Failed() bool { return o.Err != nil }

// ResultMap returns the metrics for comparison, substituting the error
// form when the invocation failed.
func (o Outcome) ResultMap() map[string]any {
	if o.Err == nil {
		return o.Metrics
	}
	m := map[string]any{"error": o.Err.Error()}
	if o.Err.Detail != "" {
		m["detail"] = o.Err.Detail
	}
	return m
}

// Config describes one executable under test.
type Config struct {
	// Label names the side this adapter drives ("primary", "secondary").
	Label string
	// Path is the executable to run.
	Path string
	// Timeout bounds one invocation; DefaultRunTimeout when zero.
	Timeout time.Duration
	// TempDir receives fixture files; os.TempDir() when empty.
	TempDir string
	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Adapter invokes one executable under test.
type Adapter struct {
	label     string
	path      string
	timeout   time.Duration
	tempDir   string
	logger    *slog.Logger
	validator *contract.Validator
}

// New builds an adapter and compiles the result contract it validates
// stdout against.
func New(cfg Config) (*Adapter, error) {
	if cfg.Label == "" {
		return nil, fmt.Errorf("adapter label must not be empty")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("adapter %s: executable path must not be empty", cfg.Label)
	}

	validator, err := contract.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("adapter %s: %w", cfg.Label, err)
	}

	a := &Adapter{
		label:     cfg.Label,
		path:      cfg.Path,
		timeout:   cfg.Timeout,
		tempDir:   cfg.TempDir,
		logger:    cfg.Logger,
		validator: validator,
	}
	if a.timeout <= 0 {
		a.timeout = DefaultRunTimeout
	}
	if a.tempDir == "" {
		a.tempDir = os.TempDir()
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a, nil
}

// Label returns the side name this adapter drives.
func (a *Adapter) Label() string { return a.label }

// Path returns the executable path.
func (a *Adapter) Path() string { return a.path }

// Invoke runs one test type against the fixture. The fixture file is
// removed before Invoke returns, on every path.
func (a *Adapter) Invoke(ctx context.Context, fixture *workload.Fixture, testType string) Outcome {
	payload, err := canon.Marshal(fixture.WireMap())
	if err != nil {
		return failure(ErrLaunch, fmt.Sprintf("serializing fixture: %v", err), "")
	}

	fixturePath := filepath.Join(a.tempDir, fmt.Sprintf("crosscheck_%s_%s_%d.json", a.label, testType, os.Getpid()))
	if err := os.WriteFile(fixturePath, payload, 0o600); err != nil {
		return failure(ErrLaunch, fmt.Sprintf("writing fixture file: %v", err), "")
	}
	defer func() {
		if err := os.Remove(fixturePath); err != nil {
			a.logger.Warn("removing fixture file", "path", fixturePath, "error", err)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.path, fixturePath, testType)
	// Unblocks Wait when a grandchild inherits stdout past the kill.
	cmd.WaitDelay = 5 * time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	a.logger.Debug("invoking executable", "label", a.label, "test_type", testType, "fixture", fixturePath)
	runErr := cmd.Run()
	elapsed := time.Since(started)

	if runErr != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return failure(ErrTimeout,
				fmt.Sprintf("timed out after %s running %s", a.timeout, testType),
				clip(stderr.String()))
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return failure(ErrExit,
				fmt.Sprintf("exited with status %d running %s", exitErr.ExitCode(), testType),
				clip(stderr.String()))
		}
		return failure(ErrLaunch, fmt.Sprintf("starting executable: %v", runErr), "")
	}

	var metrics map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &metrics); err != nil {
		return failure(ErrParse,
			fmt.Sprintf("stdout is not a JSON object: %v", err),
			clip(stdout.String()))
	}
	if err := a.validator.Validate(stdout.Bytes()); err != nil {
		return failure(ErrSchema, "result payload violates contract", clip(err.Error()))
	}

	a.logger.Debug("executable finished", "label", a.label, "test_type", testType, "elapsed", elapsed)
	return Outcome{Metrics: metrics}
}

// Info is the version metadata recorded for one side of a run.
type Info struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	Version string `json:"version"`
	// BuildTime and SizeBytes come from the executable file when the
	// version probe fails.
	BuildTime *time.Time `json:"build_time,omitempty"`
	SizeBytes int64      `json:"size_bytes,omitempty"`
}

// Probe extracts version metadata via --version. When the probe fails or
// prints nothing, the version reads "Unknown" and file metadata stands in.
func (a *Adapter) Probe(ctx context.Context) Info {
	info := Info{Label: a.label, Path: a.path, Version: "Unknown"}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, a.path, "--version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err == nil {
		if version := strings.TrimSpace(stdout.String()); version != "" {
			info.Version = version
			return info
		}
	}

	if st, err := os.Stat(a.path); err == nil {
		mtime := st.ModTime().UTC()
		info.BuildTime = &mtime
		info.SizeBytes = st.Size()
	}
	return info
}

func failure(category ErrorCategory, message, detail string) Outcome {
	return Outcome{Err: &InvokeError{Category: category, Message: message, Detail: detail}}
}

// clip bounds diagnostic text carried in outcomes; stderr from a crashing
// executable can be arbitrarily large.
func clip(s string) string {
	const limit = 512
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
