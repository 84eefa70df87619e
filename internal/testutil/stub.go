// Package testutil provides helpers shared by the harness test suites.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// StubExecutable writes an executable shell script into a per-test temp
// directory and returns its path.
//
// Adapter and runner tests use stubs in place of real ledger builds: a
// stub can echo canned metrics, exit non-zero, sleep past a deadline, or
// inspect its argv. Skips the calling test on platforms without /bin/sh.
func StubExecutable(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing stub executable: %v", err)
	}
	return path
}
