package source

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"psv/internal/logging"
	"psv/internal/runner"
	"psv/internal/sim"
)

// Executable runs a push_swap program with the sequence as arguments and
// parses what it prints.
type Executable struct {
	Path     string
	Strategy Strategy
	// Timeout bounds one invocation; zero uses the runner default.
	Timeout time.Duration
	// MaxOutputBytes caps captured stdout; zero uses the runner default.
	MaxOutputBytes int64
	// Runner executes the program; nil uses a DirectRunner.
	Runner runner.Runner
}

// NewExecutable resolves path and returns a source for it. A path without a
// separator is looked up in PATH.
func NewExecutable(path string, strategy Strategy, timeout time.Duration) (*Executable, error) {
	resolved, err := Resolve(path)
	if err != nil {
		return nil, err
	}
	return &Executable{Path: resolved, Strategy: strategy, Timeout: timeout}, nil
}

// Resolve checks that path names an executable file.
func Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrExecutableNotFound)
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutableNotFound, err)
	}
	return resolved, nil
}

// Args builds the argument list: the strategy flag, when set, then the numbers.
func (e *Executable) Args(seq sim.Sequence) []string {
	args := make([]string, 0, len(seq)+1)
	if flag := e.Strategy.Flag(); flag != "" {
		args = append(args, flag)
	}
	return append(args, seq.Args()...)
}

// Instructions runs the program once for seq.
func (e *Executable) Instructions(ctx context.Context, seq sim.Sequence) ([]sim.Instruction, error) {
	if _, err := Resolve(e.Path); err != nil {
		return nil, err
	}
	r := e.Runner
	if r == nil {
		r = runner.NewDirectRunner()
	}

	res, err := r.Run(ctx, runner.Command{
		Binary:         e.Path,
		Arguments:      e.Args(seq),
		Timeout:        e.Timeout,
		MaxOutputBytes: e.MaxOutputBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProcessSpawnFailed, err)
	}

	switch {
	case res.TimedOut:
		return nil, fmt.Errorf("%w: %s", ErrTimeout, res.KillReason)
	case res.Killed:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrProcessFailed, res.KillReason)
	case res.Truncated:
		return nil, fmt.Errorf("%w: %d bytes discarded", ErrOutputTooLarge, res.TruncatedBytes)
	case res.ExitCode != 0:
		msg := firstLine(res.Stderr)
		if msg == "" {
			return nil, fmt.Errorf("%w: exit status %d", ErrProcessFailed, res.ExitCode)
		}
		return nil, fmt.Errorf("%w: exit status %d: %s", ErrProcessFailed, res.ExitCode, msg)
	}

	ins, err := sim.ParseInstructions(res.Stdout)
	if err != nil {
		return nil, err
	}
	logging.SourceDebug("%s printed %d instructions for %d values in %s", e.Path, len(ins), len(seq), res.Duration)
	return ins, nil
}

func (e *Executable) String() string {
	if e.Strategy == StrategyDefault {
		return e.Path
	}
	return e.Path + " " + e.Strategy.Flag()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
