// Package source obtains the instruction list for an input sequence: from
// literal text, from a file, or by running a push_swap executable.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"psv/internal/logging"
	"psv/internal/sim"
)

// Sentinel errors. Every error returned by a Source matches exactly one of
// these with errors.Is, except caller cancellation, which matches ctx.Err().
var (
	ErrExecutableNotFound   = errors.New("executable not found")
	ErrTimeout              = errors.New("program timed out")
	ErrMalformedInstruction = sim.ErrMalformedInstruction
	ErrProcessSpawnFailed   = errors.New("failed to start program")
	ErrProcessFailed        = errors.New("program failed")
	ErrOutputTooLarge       = errors.New("program output exceeded limit")
	ErrFileUnreadable       = errors.New("instruction file unreadable")
)

// Source produces the instructions that should sort seq.
type Source interface {
	Instructions(ctx context.Context, seq sim.Sequence) ([]sim.Instruction, error)
}

// Text is a literal instruction list. It ignores the input sequence.
type Text string

// Instructions parses the text.
func (t Text) Instructions(_ context.Context, _ sim.Sequence) ([]sim.Instruction, error) {
	return sim.ParseInstructions(string(t))
}

func (t Text) String() string { return "text" }

// File reads whitespace separated instructions from a path.
type File string

// Instructions reads and parses the file.
func (f File) Instructions(_ context.Context, _ sim.Sequence) ([]sim.Instruction, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		logging.SourceWarn("Cannot read instruction file %s: %v", string(f), err)
		return nil, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	ins, err := sim.ParseInstructions(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", string(f), err)
	}
	logging.SourceDebug("Read %d instructions from %s", len(ins), string(f))
	return ins, nil
}

func (f File) String() string { return "file " + string(f) }

// Strategy is the algorithm selector some push_swap programs accept as their
// first argument.
type Strategy string

const (
	StrategyDefault  Strategy = ""
	StrategySimple   Strategy = "simple"
	StrategyMedium   Strategy = "medium"
	StrategyComplex  Strategy = "complex"
	StrategyAdaptive Strategy = "adaptive"
)

// Strategies lists the selectable strategies in menu order.
var Strategies = []Strategy{StrategyDefault, StrategySimple, StrategyMedium, StrategyComplex, StrategyAdaptive}

// ParseStrategy accepts a strategy name, with or without leading dashes.
func ParseStrategy(s string) (Strategy, error) {
	s = strings.TrimLeft(strings.ToLower(strings.TrimSpace(s)), "-")
	if s == "default" || s == "none" {
		s = ""
	}
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q (valid: simple, medium, complex, adaptive)", s)
}

// Flag returns the command-line flag for the strategy, empty for the default.
func (s Strategy) Flag() string {
	if s == StrategyDefault {
		return ""
	}
	return "--" + string(s)
}

func (s Strategy) String() string {
	if s == StrategyDefault {
		return "default"
	}
	return string(s)
}
