// Package generate produces input sequences for push_swap programs: plain
// orderings, random permutations, samples from a custom range, named presets,
// and sequences with a requested amount of disorder found by a cancellable
// randomized search.
package generate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"psv/internal/logging"
	"psv/internal/sim"
)

var (
	// ErrCancelled is returned when the caller cancels a search. No partial
	// sequence is ever returned alongside it.
	ErrCancelled = errors.New("generation cancelled")
	// ErrRangeTooSmall is returned when a custom range holds fewer distinct
	// values than requested.
	ErrRangeTooSmall = errors.New("range holds fewer values than requested")
	// ErrInvalidLength is returned for negative lengths.
	ErrInvalidLength = errors.New("invalid sequence length")
)

// RangeSpec selects where values come from.
type RangeSpec struct {
	// Custom samples from [Min, Max]; otherwise values are 0..n-1.
	Custom bool
	Min    int
	Max    int
}

// NormalizedRange yields a permutation of 0..n-1.
func NormalizedRange() RangeSpec { return RangeSpec{} }

// CustomRange samples distinct values from [min, max].
func CustomRange(min, max int) RangeSpec { return RangeSpec{Custom: true, Min: min, Max: max} }

// Size is the number of distinct values in a custom range.
func (r RangeSpec) Size() int {
	if r.Max < r.Min {
		return 0
	}
	return r.Max - r.Min + 1
}

func (r RangeSpec) String() string {
	if !r.Custom {
		return "normalized"
	}
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// DisorderSpec describes the disorder a generated sequence must have.
type DisorderSpec struct {
	Target int
	Metric Metric
	// MinSwaps random swaps are applied before the search starts.
	MinSwaps int
	// ShuffleFirst starts the search from a shuffled baseline instead of a
	// sorted one.
	ShuffleFirst bool
}

// Reachable reports whether Target lies in the metric's range for n values.
func (d DisorderSpec) Reachable(n int) bool {
	return d.Target >= 0 && d.Target <= d.Metric.Max(n)
}

// Generator draws random sequences. It is not safe for concurrent use; give
// every goroutine its own.
type Generator struct {
	rng *rand.Rand

	// Progress, when set, is called after every search iteration with the
	// iteration number and the current metric value.
	Progress func(iteration, metric int)
}

// NewGenerator returns a generator with a random seed.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededGenerator returns a deterministic generator.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Baseline returns length distinct values from r in ascending order.
func (g *Generator) Baseline(length int, r RangeSpec) (sim.Sequence, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if !r.Custom {
		return Ordered(length), nil
	}
	if r.Size() < length {
		return nil, fmt.Errorf("%w: %s holds %d values, need %d", ErrRangeTooSmall, r, r.Size(), length)
	}

	out := make(sim.Sequence, 0, length)
	if length*2 >= r.Size() {
		// dense: take a prefix of a shuffled range
		for _, off := range g.rng.Perm(r.Size())[:length] {
			out = append(out, r.Min+off)
		}
	} else {
		seen := make(map[int]struct{}, length)
		for len(out) < length {
			v := r.Min + g.rng.IntN(r.Size())
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Shuffle permutes s in place.
func (g *Generator) Shuffle(s sim.Sequence) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

// randomPair returns two distinct indices below n (n >= 2).
func (g *Generator) randomPair(n int) (int, int) {
	i := g.rng.IntN(n)
	j := g.rng.IntN(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// Generate builds a baseline, applies MinSwaps random swaps and then swaps
// random pairs until the metric equals the target. A swap is reverted only
// when it moves the metric away from the target, so the walk can cross
// plateaus of the adjacent metric.
// Cancellation is checked on every iteration; unreachable targets only ever
// end through ctx.
func (g *Generator) Generate(ctx context.Context, length int, r RangeSpec, d DisorderSpec) (sim.Sequence, error) {
	seq, err := g.Baseline(length, r)
	if err != nil {
		return nil, err
	}
	if d.ShuffleFirst {
		g.Shuffle(seq)
	}
	n := len(seq)
	if n >= 2 {
		for k := 0; k < d.MinSwaps; k++ {
			i, j := g.randomPair(n)
			seq[i], seq[j] = seq[j], seq[i]
		}
	}

	if !d.Reachable(n) {
		logging.GenerateDebug("target %d outside [0, %d] for %s metric, n=%d; search runs until cancelled",
			d.Target, d.Metric.Max(n), d.Metric, n)
	}

	current := d.Metric.Measure(seq)
	dist := abs(current - d.Target)
	for iter := 0; dist != 0; iter++ {
		select {
		case <-ctx.Done():
			logging.GenerateDebug("search cancelled after %d iterations at %s=%d (target %d)", iter, d.Metric, current, d.Target)
			return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		default:
		}

		if n < 2 {
			// no swap can change anything; wait for the caller to give up
			<-ctx.Done()
			continue
		}

		i, j := g.randomPair(n)
		seq[i], seq[j] = seq[j], seq[i]
		m := d.Metric.Measure(seq)
		if dd := abs(m - d.Target); dd <= dist {
			dist, current = dd, m
		} else {
			seq[i], seq[j] = seq[j], seq[i]
		}

		if g.Progress != nil {
			g.Progress(iter, current)
		}
	}

	logging.GenerateDebug("generated %d values with %s=%d", n, d.Metric, current)
	return seq, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
