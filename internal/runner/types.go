// Package runner executes external programs on the host and captures their
// output under a timeout and a size cap. It knows nothing about push_swap; the
// source package gives meaning to exit codes and output.
package runner

import (
	"context"
	"strings"
	"time"
)

// Runner is the interface for process execution.
type Runner interface {
	// Run executes cmd. Infrastructure failures (the binary could not be
	// started) are returned as errors; everything the process itself did,
	// including non-zero exits and being killed, is reported in the Result.
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Command is a single process invocation.
type Command struct {
	// Binary is the executable path.
	Binary string `json:"binary"`

	// Arguments are passed verbatim; there is no shell.
	Arguments []string `json:"arguments"`

	// Timeout overrides the runner's default when positive.
	Timeout time.Duration `json:"timeout,omitempty"`

	// MaxOutputBytes overrides the runner's capture limit when positive.
	MaxOutputBytes int64 `json:"max_output_bytes,omitempty"`
}

// CommandString returns the command line for display and logging.
func (c Command) CommandString() string {
	if len(c.Arguments) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Arguments, " ")
}

// Result is what a process did.
type Result struct {
	// ExitCode is the process exit code, -1 when it never exited normally.
	ExitCode int `json:"exit_code"`

	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`

	Duration   time.Duration `json:"duration"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`

	// Killed is set when the process was terminated by timeout or
	// cancellation.
	Killed     bool   `json:"killed"`
	KillReason string `json:"kill_reason,omitempty"`
	// TimedOut distinguishes a timeout kill from a caller cancellation.
	TimedOut bool `json:"timed_out,omitempty"`

	// Truncated is set when output exceeded the capture limit.
	Truncated      bool  `json:"truncated"`
	TruncatedBytes int64 `json:"truncated_bytes,omitempty"`
}

// Exited reports whether the process ran to completion with exit code 0.
func (r *Result) Exited() bool {
	return r != nil && !r.Killed && r.ExitCode == 0
}

// Config holds runner defaults.
type Config struct {
	DefaultTimeout time.Duration
	MaxOutputBytes int64
}

// DefaultConfig returns the defaults used when a command sets no limits.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout: 10 * time.Second,
		MaxOutputBytes: 64 * 1024 * 1024,
	}
}

// merge fills in zero limits on cmd from the config.
func (c Config) merge(cmd Command) Command {
	if cmd.Timeout <= 0 {
		cmd.Timeout = c.DefaultTimeout
	}
	if cmd.MaxOutputBytes <= 0 {
		cmd.MaxOutputBytes = c.MaxOutputBytes
	}
	return cmd
}
