package sim

import "fmt"

// Playback steps a Machine through a loaded instruction list. Stepping
// backwards applies the inverse of the last applied instruction, so no
// snapshots are kept.
type Playback struct {
	initial      Sequence
	instructions []Instruction
	machine      *Machine
	pc           int
}

// NewPlayback returns an empty playback. Call Load before stepping.
func NewPlayback() *Playback {
	return &Playback{machine: NewMachine(nil)}
}

// Load resets the playback onto a new input and instruction list.
func (p *Playback) Load(seq Sequence, instructions []Instruction) {
	p.initial = seq.Clone()
	p.instructions = append([]Instruction(nil), instructions...)
	p.Reset()
}

// Clear drops the loaded input and instructions.
func (p *Playback) Clear() {
	p.Load(nil, nil)
}

// Reset rewinds to the initial state.
func (p *Playback) Reset() {
	p.machine = NewMachine(p.initial)
	p.pc = 0
}

// StepForward applies the instruction at the current index. A failing
// instruction leaves both the state and the index unchanged.
func (p *Playback) StepForward() error {
	if p.pc >= len(p.instructions) {
		return nil
	}
	if err := p.machine.Apply(p.instructions[p.pc]); err != nil {
		return fmt.Errorf("instruction %d: %w", p.pc+1, err)
	}
	p.pc++
	return nil
}

// StepBackward undoes the previous instruction. It returns false at the start.
func (p *Playback) StepBackward() bool {
	if p.pc == 0 {
		return false
	}
	prev := p.instructions[p.pc-1]
	if err := p.machine.Apply(prev.Inverse()); err != nil {
		// the inverse of a successful step cannot fail; rebuild if it does
		target := p.pc - 1
		p.Reset()
		_ = p.SkipTo(target)
		return true
	}
	p.pc--
	return true
}

// SkipTo moves to index k, stepping in whichever direction is needed.
func (p *Playback) SkipTo(k int) error {
	if k < 0 || k > len(p.instructions) {
		return fmt.Errorf("index %d out of range [0, %d]", k, len(p.instructions))
	}
	for p.pc > k {
		p.StepBackward()
	}
	for p.pc < k {
		if err := p.StepForward(); err != nil {
			return err
		}
	}
	return nil
}

// RunToEnd steps forward until the list is exhausted or an instruction
// fails. It returns the number of steps taken.
func (p *Playback) RunToEnd() (int, error) {
	start := p.pc
	for !p.Done() {
		if err := p.StepForward(); err != nil {
			return p.pc - start, err
		}
	}
	return p.pc - start, nil
}

// Done reports whether every instruction has been applied.
func (p *Playback) Done() bool { return p.pc >= len(p.instructions) }

// CurrentState returns a copy of the stacks at the current index.
func (p *Playback) CurrentState() StackState { return p.machine.Snapshot() }

// CurrentIndex is the number of instructions applied so far.
func (p *Playback) CurrentIndex() int { return p.pc }

// TotalInstructions is the length of the loaded instruction list.
func (p *Playback) TotalInstructions() int { return len(p.instructions) }

// Instructions returns the loaded list. Callers must not modify it.
func (p *Playback) Instructions() []Instruction { return p.instructions }

// Input returns the sequence the playback starts from.
func (p *Playback) Input() Sequence { return p.initial.Clone() }

// IsSorted reports sortedness at the current index.
func (p *Playback) IsSorted() bool { return p.machine.IsSorted() }
