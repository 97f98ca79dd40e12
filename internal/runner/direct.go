package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"psv/internal/logging"
)

// DirectRunner runs commands straight on the host with os/exec.
type DirectRunner struct {
	config Config
}

// NewDirectRunner creates a runner with default config.
func NewDirectRunner() *DirectRunner {
	return NewDirectRunnerWithConfig(DefaultConfig())
}

// NewDirectRunnerWithConfig creates a runner with custom defaults. Zero fields
// fall back to DefaultConfig.
func NewDirectRunnerWithConfig(config Config) *DirectRunner {
	def := DefaultConfig()
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = def.DefaultTimeout
	}
	if config.MaxOutputBytes <= 0 {
		config.MaxOutputBytes = def.MaxOutputBytes
	}
	logging.RunnerDebug("Creating DirectRunner: timeout=%s, maxOutput=%d bytes",
		config.DefaultTimeout, config.MaxOutputBytes)
	return &DirectRunner{config: config}
}

// Config returns the runner defaults.
func (r *DirectRunner) Config() Config {
	return r.config
}

// Run executes cmd, killing it when the timeout elapses or ctx is done.
func (r *DirectRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("binary is required")
	}
	cmd = r.config.merge(cmd)

	logging.RunnerDebug("Executing: %s (timeout=%s)", cmd.CommandString(), cmd.Timeout)

	execCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	execCmd := exec.CommandContext(execCtx, cmd.Binary, cmd.Arguments...)
	// Without WaitDelay a grandchild holding the pipes open keeps Wait blocked
	// after the kill.
	execCmd.WaitDelay = 500 * time.Millisecond

	var stdoutBuf, stderrBuf bytes.Buffer
	stdoutLimited := &limitedWriter{w: &stdoutBuf, max: cmd.MaxOutputBytes}
	stderrLimited := &limitedWriter{w: &stderrBuf, max: cmd.MaxOutputBytes}
	execCmd.Stdout = stdoutLimited
	execCmd.Stderr = stderrLimited

	result := &Result{ExitCode: -1}
	result.StartedAt = time.Now()
	err := execCmd.Run()
	result.FinishedAt = time.Now()
	result.Duration = result.FinishedAt.Sub(result.StartedAt)

	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if stdoutLimited.truncated || stderrLimited.truncated {
		result.Truncated = true
		result.TruncatedBytes = stdoutLimited.discarded + stderrLimited.discarded
		logging.RunnerWarn("Output of %s truncated: %d bytes discarded", cmd.Binary, result.TruncatedBytes)
	}

	if err == nil {
		result.ExitCode = 0
		logging.RunnerDebug("%s exited 0 after %s, stdout=%d bytes", cmd.Binary, result.Duration, len(result.Stdout))
		return result, nil
	}

	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.Killed = true
		result.TimedOut = true
		result.KillReason = fmt.Sprintf("timeout after %s", cmd.Timeout)
		logging.RunnerWarn("Killed %s: %s", cmd.Binary, result.KillReason)
	case ctx.Err() != nil:
		result.Killed = true
		result.KillReason = "context canceled"
		logging.RunnerDebug("Killed %s: context canceled", cmd.Binary)
	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// never started
			logging.RunnerWarn("Failed to start %s: %v", cmd.Binary, err)
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
		logging.RunnerDebug("%s exited %d", cmd.Binary, result.ExitCode)
	}
	return result, nil
}

// limitedWriter is an io.Writer that keeps at most max bytes and silently
// drops the rest.
type limitedWriter struct {
	w         io.Writer
	max       int64
	written   int64
	truncated bool
	discarded int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)

	if lw.written >= lw.max {
		lw.truncated = true
		lw.discarded += int64(n)
		return n, nil
	}

	remaining := lw.max - lw.written
	if int64(n) > remaining {
		lw.truncated = true
		lw.discarded += int64(n) - remaining
		written, err := lw.w.Write(p[:remaining])
		lw.written += int64(written)
		// full length, or os/exec reports a short write
		return n, err
	}

	written, err := lw.w.Write(p)
	lw.written += int64(written)
	return written, err
}
