package analysis

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// writeScript drops a shell script standing in for the analysis script so the
// process-handling paths can be exercised without a Python install.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell-script test double requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "analyze.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func newShellRunner(t *testing.T, scriptBody string, timeout time.Duration) *ScriptRunner {
	t.Helper()

	runner, err := NewScriptRunner(Config{
		PythonPath: "/bin/sh",
		ScriptPath: writeScript(t, scriptBody),
		Timeout:    timeout,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return runner
}

func TestNewScriptRunnerRequiresScriptPath(t *testing.T) {
	_, err := NewScriptRunner(Config{})
	require.Error(t, err)
}

func TestScriptRunnerRunParsesJSONOutput(t *testing.T) {
	runner := newShellRunner(t, `echo '{"total_evaluations": 5, "average_rating": 4.1}'`, 5*time.Second)

	report, err := runner.Run(context.Background(), "1", "2", "2026-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"total_evaluations": 5, "average_rating": 4.1}`, string(report))
}

func TestScriptRunnerRunPassesFilterArguments(t *testing.T) {
	runner := newShellRunner(t, `printf '{"args": "%s %s %s"}' "$1" "$2" "$3"`, 5*time.Second)

	report, err := runner.Run(context.Background(), "7", "", "2026-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"args": "7 all 2026-1"}`, string(report))
}

func TestScriptRunnerRunScriptFailure(t *testing.T) {
	runner := newShellRunner(t, `echo "boom" >&2; exit 3`, 5*time.Second)

	_, err := runner.Run(context.Background(), "", "", "")
	require.ErrorIs(t, err, ErrScriptFailed)
}

func TestScriptRunnerRunInvalidOutput(t *testing.T) {
	runner := newShellRunner(t, `echo "this is not json"`, 5*time.Second)

	_, err := runner.Run(context.Background(), "", "", "")
	require.ErrorIs(t, err, ErrInvalidOutput)
}

func TestScriptRunnerRunTimeout(t *testing.T) {
	// Busy-wait inside the shell itself so no child process outlives the
	// kill and holds the output pipe open.
	runner := newShellRunner(t, `while :; do :; done`, 100*time.Millisecond)

	start := time.Now()
	_, err := runner.Run(context.Background(), "", "", "")
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 3*time.Second)
}
