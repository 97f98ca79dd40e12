package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPlayback(t *testing.T, input Sequence, text string) *Playback {
	t.Helper()
	ins, err := ParseInstructions(text)
	require.NoError(t, err)
	p := NewPlayback()
	p.Load(input, ins)
	return p
}

func TestPlayback_ForwardAndBackward(t *testing.T) {
	p := loadPlayback(t, Sequence{1, 0, 3, 2}, "sa pb pb sa pa pa")
	initial := p.CurrentState()

	assert.Equal(t, 6, p.TotalInstructions())
	assert.Equal(t, 0, p.CurrentIndex())
	assert.False(t, p.StepBackward())

	var states []StackState
	for !p.Done() {
		states = append(states, p.CurrentState())
		require.NoError(t, p.StepForward())
	}
	assert.True(t, p.IsSorted())
	assert.Equal(t, 6, p.CurrentIndex())

	for i := len(states) - 1; i >= 0; i-- {
		require.True(t, p.StepBackward())
		assert.Equal(t, states[i], p.CurrentState(), "index %d", i)
	}
	assert.Equal(t, initial, p.CurrentState())
}

func TestPlayback_SkipToMatchesReplay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	input := Sequence{4, 9, 1, 7, 3, 0, 8}
	var ins []Instruction
	// only instructions that never fail on this input shape
	safe := []Instruction{RotateA, ReverseRotateA, RotateB, ReverseRotateB, RotateBoth, ReverseRotateBoth}
	ins = append(ins, PushB, PushB, PushB)
	for i := 0; i < 40; i++ {
		ins = append(ins, safe[rng.Intn(len(safe))])
	}

	p := NewPlayback()
	p.Load(input, ins)

	for _, k := range []int{10, 3, 43, 0, 25, 25, 1} {
		require.NoError(t, p.SkipTo(k))

		m := NewMachine(input)
		_, err := m.ApplyAll(ins[:k])
		require.NoError(t, err)
		assert.Equal(t, m.Snapshot(), p.CurrentState(), "skip to %d", k)
		assert.Equal(t, k, p.CurrentIndex())
	}

	assert.Error(t, p.SkipTo(-1))
	assert.Error(t, p.SkipTo(len(ins)+1))
}

func TestPlayback_FailingStepDoesNotAdvance(t *testing.T) {
	p := loadPlayback(t, Sequence{1, 2}, "pb pb pb ra")
	require.NoError(t, p.StepForward())
	require.NoError(t, p.StepForward())

	err := p.StepForward()
	assert.ErrorIs(t, err, ErrEmptySource)
	assert.Equal(t, 2, p.CurrentIndex())

	steps, err := p.RunToEnd()
	assert.Zero(t, steps)
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestPlayback_ResetAndClear(t *testing.T) {
	p := loadPlayback(t, Sequence{2, 1}, "sa")
	n, err := p.RunToEnd()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, p.IsSorted())

	p.Reset()
	assert.Equal(t, 0, p.CurrentIndex())
	assert.Equal(t, []int{2, 1}, p.CurrentState().A)
	assert.Equal(t, Sequence{2, 1}, p.Input())

	p.Clear()
	assert.Zero(t, p.TotalInstructions())
	assert.Empty(t, p.CurrentState().A)
	assert.True(t, p.Done())
}
