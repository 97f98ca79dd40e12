package bench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const failureSeparator = "===================================="

// FailureLog appends failed trials to a text file. It is written only by the
// harness aggregator goroutine and is not safe for concurrent use.
type FailureLog struct {
	w      *bufio.Writer
	closer io.Closer
}

// OpenFailureLog opens path for appending, creating it when missing.
func OpenFailureLog(path string) (*FailureLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure log: %w", err)
	}
	return &FailureLog{w: bufio.NewWriter(f), closer: f}, nil
}

// NewFailureLog writes to w. Close flushes but does not close w.
func NewFailureLog(w io.Writer) *FailureLog {
	return &FailureLog{w: bufio.NewWriter(w)}
}

// Write appends one failed trial:
//
//	Test 3 failed.
//	Reason: not-sorted
//	Numbers: [2 0 1]
//	Instructions: sa
//	Final stack state: [0 2 1] []
//	====================================
func (l *FailureLog) Write(runID string, r TrialResult) error {
	f := r.Failure
	if f == nil {
		return nil
	}
	fmt.Fprintf(l.w, "Test %d failed.\n", r.Trial)
	fmt.Fprintf(l.w, "Run: %s\n", runID)
	fmt.Fprintf(l.w, "Reason: %s\n", f.Reason)
	if f.Message != "" {
		fmt.Fprintf(l.w, "Error: %s\n", f.Message)
	}
	fmt.Fprintf(l.w, "Numbers: %v\n", []int(f.Numbers))

	tokens := make([]string, len(f.Instructions))
	for i, ins := range f.Instructions {
		tokens[i] = ins.String()
	}
	fmt.Fprintf(l.w, "Instructions: %s\n", strings.Join(tokens, " "))

	if f.Final != nil {
		fmt.Fprintf(l.w, "Final stack state: %v %v\n", f.Final.A, f.Final.B)
	}
	fmt.Fprintln(l.w, failureSeparator)
	return l.w.Flush()
}

// Close flushes and closes the underlying file.
func (l *FailureLog) Close() error {
	err := l.w.Flush()
	if l.closer != nil {
		if cerr := l.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
