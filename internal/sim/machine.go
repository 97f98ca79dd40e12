package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySource is returned by a push whose source stack is empty.
	ErrEmptySource = errors.New("source stack is empty")
	// ErrInsufficientElements is returned by a swap on a stack with fewer
	// than two elements.
	ErrInsufficientElements = errors.New("fewer than two elements to swap")
)

// StackError ties a stack failure to the instruction that caused it.
type StackError struct {
	Instruction Instruction
	Err         error
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Instruction, e.Err)
}

func (e *StackError) Unwrap() error { return e.Err }

// StackState is a read-only copy of both stacks, top of stack first.
type StackState struct {
	A []int `json:"a"`
	B []int `json:"b"`
}

// IsSorted reports whether A is ascending and B is empty.
func (s StackState) IsSorted() bool {
	return len(s.B) == 0 && Sequence(s.A).IsAscending()
}

// Len returns the total number of elements across both stacks.
func (s StackState) Len() int { return len(s.A) + len(s.B) }

// Machine owns stacks A and B. It is not safe for concurrent use.
type Machine struct {
	a *deque
	b *deque
}

// NewMachine pushes the sequence onto A so that seq[0] is the top.
func NewMachine(seq Sequence) *Machine {
	m := &Machine{
		a: newDeque(len(seq)),
		b: newDeque(len(seq)),
	}
	for _, v := range seq {
		m.a.PushBack(v)
	}
	return m
}

// Apply executes one instruction. On error the stacks are left untouched.
func (m *Machine) Apply(ins Instruction) error {
	switch ins {
	case PushA:
		return m.push(ins, m.b, m.a)
	case PushB:
		return m.push(ins, m.a, m.b)
	case SwapA:
		return m.swap(ins, m.a)
	case SwapB:
		return m.swap(ins, m.b)
	case SwapBoth:
		if m.a.Len() < 2 || m.b.Len() < 2 {
			return &StackError{Instruction: ins, Err: ErrInsufficientElements}
		}
		m.a.swapTop()
		m.b.swapTop()
	case RotateA:
		m.a.rotate()
	case RotateB:
		m.b.rotate()
	case RotateBoth:
		m.a.rotate()
		m.b.rotate()
	case ReverseRotateA:
		m.a.reverseRotate()
	case ReverseRotateB:
		m.b.reverseRotate()
	case ReverseRotateBoth:
		m.a.reverseRotate()
		m.b.reverseRotate()
	default:
		return fmt.Errorf("unknown instruction %d", uint8(ins))
	}
	return nil
}

func (m *Machine) push(ins Instruction, from, to *deque) error {
	v, ok := from.PopFront()
	if !ok {
		return &StackError{Instruction: ins, Err: ErrEmptySource}
	}
	to.PushFront(v)
	return nil
}

func (m *Machine) swap(ins Instruction, d *deque) error {
	if d.Len() < 2 {
		return &StackError{Instruction: ins, Err: ErrInsufficientElements}
	}
	d.swapTop()
	return nil
}

// IsSorted reports whether A is ascending and B is empty.
func (m *Machine) IsSorted() bool {
	if m.b.Len() != 0 {
		return false
	}
	for i := 1; i < m.a.Len(); i++ {
		if m.a.At(i-1) >= m.a.At(i) {
			return false
		}
	}
	return true
}

// Snapshot copies the current state.
func (m *Machine) Snapshot() StackState {
	return StackState{A: m.a.Slice(), B: m.b.Slice()}
}

// Len returns the number of elements in A and B.
func (m *Machine) Len() (a, b int) { return m.a.Len(), m.b.Len() }

// ApplyAll runs instructions in order and stops at the first error. It
// returns how many instructions were applied.
func (m *Machine) ApplyAll(instructions []Instruction) (int, error) {
	for i, ins := range instructions {
		if err := m.Apply(ins); err != nil {
			return i, fmt.Errorf("instruction %d: %w", i+1, err)
		}
	}
	return len(instructions), nil
}
