// Package bench runs a push_swap program against many generated inputs in
// parallel, checks every answer on the stack machine, and aggregates
// instruction counts.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"psv/internal/generate"
	"psv/internal/logging"
	"psv/internal/sim"
	"psv/internal/source"
)

// DefaultMaxLength bounds sequence lengths when Options.MaxLength is zero.
const DefaultMaxLength = 100000

// ErrInvalidOptions is returned by New for unusable options.
var ErrInvalidOptions = errors.New("invalid benchmark options")

// Options configures a run.
type Options struct {
	Trials  int
	Length  int
	Workers int

	// Range selects input values; the zero value is 0..Length-1.
	Range generate.RangeSpec
	// Disorder, when set, generates inputs through the disorder search
	// instead of a uniform shuffle.
	Disorder *generate.DisorderSpec
	// SearchTimeout bounds one disorder search. Zero means no bound beyond
	// the run context.
	SearchTimeout time.Duration
	// Seed makes inputs reproducible when non-zero.
	Seed uint64

	Source source.Source
	// Executable and Strategy are recorded in the summary only.
	Executable string
	Strategy   string

	// MaxLength caps Length; zero uses DefaultMaxLength.
	MaxLength int

	// FailureLog is a path to append failed trials to; empty disables it.
	FailureLog string
	// FailureSink receives failed trials instead of a file when set.
	FailureSink *FailureLog

	// OnProgress is called after every finished trial with the number of
	// trials left. It runs on the aggregator goroutine, one call at a time.
	OnProgress func(remaining, total int)
	// OnFailure is called on the aggregator goroutine for each failed trial.
	OnFailure func(TrialResult)
}

func (o Options) validate() error {
	maxLen := o.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	switch {
	case o.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidOptions, o.Workers)
	case o.Trials < 0:
		return fmt.Errorf("%w: negative trial count %d", ErrInvalidOptions, o.Trials)
	case o.Length < 0:
		return fmt.Errorf("%w: negative length %d", ErrInvalidOptions, o.Length)
	case o.Length > maxLen:
		return fmt.Errorf("%w: length %d exceeds maximum %d", ErrInvalidOptions, o.Length, maxLen)
	case o.Range.Custom && o.Range.Size() < o.Length:
		return fmt.Errorf("%w: range %s holds %d values, need %d", ErrInvalidOptions, o.Range, o.Range.Size(), o.Length)
	case o.Source == nil:
		return fmt.Errorf("%w: no instruction source", ErrInvalidOptions)
	}
	return nil
}

// Harness runs one benchmark.
type Harness struct {
	opts      Options
	runID     string
	remaining atomic.Int64
	results   []TrialResult
}

// New validates opts and prepares a run.
func New(opts Options) (*Harness, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	h := &Harness{opts: opts, runID: uuid.NewString()}
	h.remaining.Store(int64(opts.Trials))
	return h, nil
}

// RunID identifies the run in logs, the failure log and the history store.
func (h *Harness) RunID() string { return h.runID }

// Remaining is the number of trials not yet finished. Safe to call from any
// goroutine; it only ever decreases.
func (h *Harness) Remaining() int { return int(h.remaining.Load()) }

// Results returns the finished trials of the last Run in completion order.
func (h *Harness) Results() []TrialResult { return h.results }

// Run executes every trial on a bounded worker pool and returns the summary.
// When ctx is cancelled no new trials start; the summary of the finished ones
// is returned together with ctx.Err().
func (h *Harness) Run(ctx context.Context) (*Summary, error) {
	o := h.opts
	timer := logging.StartTimer(logging.CategoryBench, "benchmark run")
	defer timer.Stop()

	flog := o.FailureSink
	if flog == nil && o.FailureLog != "" {
		var err error
		if flog, err = OpenFailureLog(o.FailureLog); err != nil {
			return nil, err
		}
		defer flog.Close()
	}

	logging.Bench("Run %s: %d trials of length %d on %d workers", h.runID, o.Trials, o.Length, o.Workers)
	started := time.Now()

	resultsCh := make(chan TrialResult, o.Workers)
	collected := make([]TrialResult, 0, o.Trials)
	done := make(chan struct{})

	// sole owner of collected and the failure log
	go func() {
		defer close(done)
		for r := range resultsCh {
			collected = append(collected, r)
			if !r.Success {
				logging.BenchDebug("Trial %d failed: %s: %s", r.Trial, r.Failure.Reason, r.Failure.Message)
				if flog != nil {
					if err := flog.Write(h.runID, r); err != nil {
						logging.BenchError("Failed to write failure log: %v", err)
					}
				}
				if o.OnFailure != nil {
					o.OnFailure(r)
				}
			}
			left := h.remaining.Add(-1)
			if o.OnProgress != nil {
				o.OnProgress(int(left), o.Trials)
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i := 1; i <= o.Trials; i++ {
		if gctx.Err() != nil {
			break
		}
		trial := i
		g.Go(func() error {
			r, ok := h.runTrial(gctx, trial)
			if ok {
				resultsCh <- r
			}
			return nil
		})
	}
	_ = g.Wait()
	close(resultsCh)
	<-done
	h.results = collected

	summary := Summarize(collected)
	summary.RunID = h.runID
	summary.Executable = o.Executable
	summary.Strategy = o.Strategy
	summary.Length = o.Length
	summary.Trials = o.Trials
	summary.Workers = o.Workers
	summary.StartedAt = started
	summary.Duration = time.Since(started)

	if err := ctx.Err(); err != nil {
		summary.Cancelled = true
		logging.BenchWarn("Run %s cancelled after %d of %d trials", h.runID, summary.Completed, o.Trials)
		return &summary, err
	}
	logging.Bench("Run %s done: %d ok, %d failed, min=%s avg=%s max=%s",
		h.runID, summary.Successes, summary.Failures, summary.MinString(), summary.AverageString(), summary.MaxString())
	return &summary, nil
}

// runTrial generates an input, asks the source for instructions and checks
// them. ok is false when the trial was interrupted by cancellation and has no
// meaningful outcome.
func (h *Harness) runTrial(ctx context.Context, trial int) (TrialResult, bool) {
	start := time.Now()
	r := h.trial(ctx, trial)
	r.Duration = time.Since(start)
	if !r.Success && ctx.Err() != nil {
		return r, false
	}
	return r, true
}

func (h *Harness) trial(ctx context.Context, trial int) TrialResult {
	o := h.opts

	var gen *generate.Generator
	if o.Seed != 0 {
		gen = generate.NewSeededGenerator(o.Seed + uint64(trial))
	} else {
		gen = generate.NewGenerator()
	}

	seq, err := h.input(ctx, gen)
	if err != nil {
		return Failed(trial, &Failure{Reason: ReasonGeneration, Err: err})
	}

	instructions, err := o.Source.Instructions(ctx, seq.Clone())
	if err != nil {
		return Failed(trial, &Failure{Reason: ReasonSource, Err: err, Numbers: seq})
	}

	m := sim.NewMachine(seq)
	applied, err := m.ApplyAll(instructions)
	if err != nil {
		final := m.Snapshot()
		return Failed(trial, &Failure{
			Reason:       ReasonInvalidInstruction,
			Err:          err,
			Numbers:      seq,
			Instructions: instructions,
			Applied:      applied,
			Final:        &final,
		})
	}
	if !m.IsSorted() {
		final := m.Snapshot()
		return Failed(trial, &Failure{
			Reason:       ReasonNotSorted,
			Message:      fmt.Sprintf("stack A not sorted after %d instructions", applied),
			Numbers:      seq,
			Instructions: instructions,
			Applied:      applied,
			Final:        &final,
		})
	}
	return Succeeded(trial, len(instructions))
}

// input builds the trial's sequence.
func (h *Harness) input(ctx context.Context, gen *generate.Generator) (sim.Sequence, error) {
	o := h.opts
	if o.Disorder == nil {
		if o.Range.Custom {
			return gen.RandomRanged(o.Length, o.Range.Min, o.Range.Max)
		}
		return gen.Random(o.Length), nil
	}
	if o.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.SearchTimeout)
		defer cancel()
	}
	return gen.Generate(ctx, o.Length, o.Range, *o.Disorder)
}
