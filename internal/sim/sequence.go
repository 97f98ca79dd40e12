package sim

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrDuplicateValue is returned when a sequence contains the same value twice.
var ErrDuplicateValue = errors.New("duplicate value in sequence")

// Sequence is an ordered list of distinct integers, the input to be sorted.
type Sequence []int

// Validate checks the no-duplicates invariant.
func (s Sequence) Validate() error {
	seen := make(map[int]struct{}, len(s))
	for i, v := range s {
		if _, dup := seen[v]; dup {
			return fmt.Errorf("%w: %d at index %d", ErrDuplicateValue, v, i)
		}
		seen[v] = struct{}{}
	}
	return nil
}

// Clone returns an independent copy.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	return out
}

// Args renders the sequence as process arguments.
func (s Sequence) Args() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strconv.Itoa(v)
	}
	return out
}

// String joins the values with single spaces, ready to paste on a command line.
func (s Sequence) String() string {
	return strings.Join(s.Args(), " ")
}

// IsAscending reports whether the values are in strictly ascending order.
func (s Sequence) IsAscending() bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] >= s[i] {
			return false
		}
	}
	return true
}

// Normalize replaces every value by its rank, so the result is a permutation
// of 0..n-1 with the same relative order. The sequence must be duplicate free.
func Normalize(s Sequence) Sequence {
	idx := make([]int, len(s))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return s[idx[a]] < s[idx[b]] })
	out := make(Sequence, len(s))
	for rank, i := range idx {
		out[i] = rank
	}
	return out
}

// ParseSequence reads whitespace-separated integers and rejects duplicates.
func ParseSequence(text string) (Sequence, error) {
	fields := strings.Fields(text)
	out := make(Sequence, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", f, err)
		}
		out = append(out, v)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
