package generate

import (
	"fmt"
	"strings"
)

// Metric selects how disorder is measured.
type Metric int

const (
	// AdjacentInversions counts positions i with s[i] > s[i+1]. Range [0, n-1].
	AdjacentInversions Metric = iota
	// PairwiseInversions counts pairs i<j with s[i] > s[j]. Range [0, n(n-1)/2].
	PairwiseInversions
)

func (m Metric) String() string {
	switch m {
	case AdjacentInversions:
		return "adjacent"
	case PairwiseInversions:
		return "pairwise"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ParseMetric accepts "adjacent" or "pairwise".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "adjacent":
		return AdjacentInversions, nil
	case "pairwise", "inversions":
		return PairwiseInversions, nil
	default:
		return 0, fmt.Errorf("unknown disorder metric %q (valid: adjacent, pairwise)", s)
	}
}

// Measure evaluates the metric on s.
func (m Metric) Measure(s []int) int {
	if m == PairwiseInversions {
		return CountPairwiseInversions(s)
	}
	return CountAdjacentInversions(s)
}

// Max is the largest value the metric can take on n distinct values.
func (m Metric) Max(n int) int {
	if n < 2 {
		return 0
	}
	if m == PairwiseInversions {
		return n * (n - 1) / 2
	}
	return n - 1
}

// CountAdjacentInversions counts out-of-order neighbours.
func CountAdjacentInversions(s []int) int {
	count := 0
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			count++
		}
	}
	return count
}

// CountPairwiseInversions counts out-of-order pairs.
func CountPairwiseInversions(s []int) int {
	count := 0
	for i := 0; i < len(s); i++ {
		for j := i + 1; j < len(s); j++ {
			if s[i] > s[j] {
				count++
			}
		}
	}
	return count
}

// DisorderRatio is the fraction of out-of-order pairs, 0 for sorted input and
// 1 for reversed input.
func DisorderRatio(s []int) float64 {
	n := len(s)
	if n < 2 {
		return 0
	}
	return float64(CountPairwiseInversions(s)) / float64(n*(n-1)/2)
}
