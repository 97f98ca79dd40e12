package bench

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"psv/internal/sim"
)

// FailureReason classifies a failed trial.
type FailureReason string

const (
	// ReasonGeneration: no input sequence could be produced.
	ReasonGeneration FailureReason = "generation"
	// ReasonSource: the program could not be run or its output not parsed.
	ReasonSource FailureReason = "source"
	// ReasonInvalidInstruction: an instruction could not be applied.
	ReasonInvalidInstruction FailureReason = "invalid-instruction"
	// ReasonNotSorted: every instruction applied but A is not sorted or B is
	// not empty.
	ReasonNotSorted FailureReason = "not-sorted"
)

// FailureReasons lists reasons in report order.
var FailureReasons = []FailureReason{ReasonGeneration, ReasonSource, ReasonInvalidInstruction, ReasonNotSorted}

// Failure is the snapshot kept for a failed trial.
type Failure struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message"`
	Err     error         `json:"-"`

	Numbers      sim.Sequence      `json:"numbers,omitempty"`
	Instructions []sim.Instruction `json:"-"`
	// Applied is how many instructions ran before the failure.
	Applied int             `json:"applied"`
	Final   *sim.StackState `json:"final,omitempty"`
}

// MarshalJSON renders instructions as their tokens.
func (f *Failure) MarshalJSON() ([]byte, error) {
	type alias Failure
	tokens := make([]string, len(f.Instructions))
	for i, ins := range f.Instructions {
		tokens[i] = ins.String()
	}
	return json.Marshal(struct {
		*alias
		Instructions []string `json:"instructions,omitempty"`
	}{(*alias)(f), tokens})
}

// TrialResult is the outcome of one trial. Exactly one of Success and
// Failure != nil holds.
type TrialResult struct {
	// Trial is the 1-based trial number.
	Trial    int           `json:"trial"`
	Success  bool          `json:"success"`
	Count    int           `json:"count,omitempty"`
	Failure  *Failure      `json:"failure,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Succeeded builds a successful result.
func Succeeded(trial, count int) TrialResult {
	return TrialResult{Trial: trial, Success: true, Count: count}
}

// Failed builds a failed result.
func Failed(trial int, f *Failure) TrialResult {
	if f.Err != nil && f.Message == "" {
		f.Message = f.Err.Error()
	}
	return TrialResult{Trial: trial, Failure: f}
}

// Summary aggregates a run. Min, Max and Average are nil when no trial
// succeeded.
type Summary struct {
	RunID      string `json:"run_id"`
	Executable string `json:"executable"`
	Strategy   string `json:"strategy,omitempty"`
	Length     int    `json:"length"`
	Trials     int    `json:"trials"`
	Workers    int    `json:"workers"`

	Completed int `json:"completed"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`

	Min     *int     `json:"min"`
	Max     *int     `json:"max"`
	Average *float64 `json:"average"`

	FailuresByReason map[FailureReason]int `json:"failures_by_reason,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Cancelled bool          `json:"cancelled"`
}

// Summarize computes counts and instruction statistics over results. It is a
// pure function of its input; order does not matter.
func Summarize(results []TrialResult) Summary {
	s := Summary{Completed: len(results)}
	var (
		sum      int
		min, max = math.MaxInt, math.MinInt
	)
	for _, r := range results {
		if !r.Success {
			s.Failures++
			if r.Failure != nil {
				if s.FailuresByReason == nil {
					s.FailuresByReason = make(map[FailureReason]int)
				}
				s.FailuresByReason[r.Failure.Reason]++
			}
			continue
		}
		s.Successes++
		sum += r.Count
		if r.Count < min {
			min = r.Count
		}
		if r.Count > max {
			max = r.Count
		}
	}
	if s.Successes > 0 {
		avg := float64(sum) / float64(s.Successes)
		s.Min, s.Max, s.Average = &min, &max, &avg
	}
	return s
}

// MinString formats Min, "n/a" when undefined.
func (s *Summary) MinString() string { return formatInt(s.Min) }

// MaxString formats Max, "n/a" when undefined.
func (s *Summary) MaxString() string { return formatInt(s.Max) }

// AverageString formats Average with two decimals, "n/a" when undefined.
func (s *Summary) AverageString() string {
	if s.Average == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *s.Average)
}

func formatInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}
