// Package executor runs local system commands behind an interface so
// callers can be tested without touching the host.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
)

// Executor abstracts command execution. Execute captures combined
// output, Stream wires the command to the given stdio, and LookPath
// reports whether a binary is installed.
type Executor interface {
	Execute(ctx context.Context, cmd string, args ...string) (string, error)
	Stream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error
	LookPath(name string) (string, error)
}

// DefaultExecutor runs commands on the local host.
type DefaultExecutor struct{}

func (e DefaultExecutor) Execute(ctx context.Context, cmd string, args ...string) (string, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	out, err := c.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

func (e DefaultExecutor) Stream(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cmd string, args ...string) error {
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

func (e DefaultExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExitError carries a process exit status. Fake executors return it
// directly; DefaultExecutor commands surface *exec.ExitError instead,
// and ExitCode understands both.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode extracts the exit status carried by err. It reports 0 for a
// nil error and ok=false when err does not wrap an exit status. The
// status is always a valid shell exit code: a process killed by a
// signal reports 128+signal, any other negative status reports 255.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if code := ee.ExitCode(); code >= 0 {
			return code, true
		}
		if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal()), true
		}
		return 255, true
	}
	var xe *ExitError
	if errors.As(err, &xe) {
		if xe.Code < 0 {
			return 255, true
		}
		return xe.Code, true
	}
	return 0, false
}
