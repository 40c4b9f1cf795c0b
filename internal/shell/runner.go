// Package shell runs single external commands through the host shell with a
// bounded timeout. Failures never surface as Go errors: they come back as a
// classified Result so each caller picks its own fallback value.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/breeze-rmm/system-reporter/internal/logging"
)

var log = logging.L("shell")

// DefaultTimeout bounds every command unless the caller configures another.
const DefaultTimeout = 10 * time.Second

// Reason classifies why a command produced no usable output.
type Reason string

const (
	ReasonNone    Reason = ""
	ReasonExit    Reason = "exit"
	ReasonTimeout Reason = "timeout"
	ReasonSpawn   Reason = "spawn"
)

// Result is the outcome of one command. Output holds trimmed stdout even when
// the command exited non-zero, since some tools (systemctl is-active) report
// state through the exit code.
type Result struct {
	Command string
	Output  string
	Reason  Reason
	Err     error
}

// OK reports whether the command ran to a zero exit.
func (r Result) OK() bool {
	return r.Reason == ReasonNone
}

// Text is the fail-to-empty view: stdout on success, "" otherwise.
func (r Result) Text() string {
	if !r.OK() {
		return ""
	}
	return r.Output
}

// Runner executes commands with /bin/sh -c.
type Runner struct {
	shell   string
	timeout time.Duration
}

// New creates a Runner. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{shell: "/bin/sh", timeout: timeout}
}

// Timeout returns the per-command bound.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes command and captures its stdout. It logs a warning on any
// failure and never returns an error.
func (r *Runner) Run(ctx context.Context, command string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	res := Result{
		Command: command,
		Output:  strings.TrimSpace(stdout.String()),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Reason = ReasonTimeout
		res.Err = fmt.Errorf("command timed out after %s", r.timeout)
	case errors.As(err, &exitErr):
		res.Reason = ReasonExit
		res.Err = fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), firstLine(stderr.String()))
	default:
		res.Reason = ReasonSpawn
		res.Err = err
	}

	log.Warn("command failed",
		logging.KeyCommand, command,
		"reason", string(res.Reason),
		logging.KeyDurationMs, time.Since(start).Milliseconds(),
		logging.KeyError, res.Err,
	)
	return res
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
