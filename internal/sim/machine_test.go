package sim

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_NewMachineLoadsStackA(t *testing.T) {
	m := NewMachine(Sequence{3, 1, 2})
	st := m.Snapshot()
	if diff := cmp.Diff(StackState{A: []int{3, 1, 2}, B: []int{}}, st); diff != "" {
		t.Errorf("unexpected initial state (-want +got):\n%s", diff)
	}
}

func TestMachine_Operations(t *testing.T) {
	tests := []struct {
		name  string
		input Sequence
		ops   []Instruction
		want  StackState
	}{
		{"pb moves head", Sequence{1, 2, 3}, []Instruction{PushB}, StackState{A: []int{2, 3}, B: []int{1}}},
		{"pa moves back", Sequence{1, 2, 3}, []Instruction{PushB, PushB, PushA}, StackState{A: []int{2, 3}, B: []int{1}}},
		{"sa swaps top two", Sequence{1, 2, 3}, []Instruction{SwapA}, StackState{A: []int{2, 1, 3}, B: []int{}}},
		{"sb swaps top two", Sequence{1, 2, 3}, []Instruction{PushB, PushB, SwapB}, StackState{A: []int{3}, B: []int{1, 2}}},
		{"ss swaps both", Sequence{1, 2, 3, 4}, []Instruction{PushB, PushB, SwapBoth}, StackState{A: []int{4, 3}, B: []int{1, 2}}},
		{"ra head to tail", Sequence{1, 2, 3}, []Instruction{RotateA}, StackState{A: []int{2, 3, 1}, B: []int{}}},
		{"rra tail to head", Sequence{1, 2, 3}, []Instruction{ReverseRotateA}, StackState{A: []int{3, 1, 2}, B: []int{}}},
		{"rb on B", Sequence{1, 2, 3}, []Instruction{PushB, PushB, RotateB}, StackState{A: []int{3}, B: []int{1, 2}}},
		{"rrb on B", Sequence{1, 2, 3, 4}, []Instruction{PushB, PushB, PushB, ReverseRotateB}, StackState{A: []int{4}, B: []int{1, 3, 2}}},
		{"rr rotates both", Sequence{1, 2, 3, 4}, []Instruction{PushB, PushB, RotateBoth}, StackState{A: []int{4, 3}, B: []int{1, 2}}},
		{"rrr reverse rotates both", Sequence{1, 2, 3, 4, 5}, []Instruction{PushB, PushB, PushB, ReverseRotateBoth}, StackState{A: []int{5, 4}, B: []int{1, 3, 2}}},
		{"rotate single element is a no-op", Sequence{7}, []Instruction{RotateA, ReverseRotateA, RotateB}, StackState{A: []int{7}, B: []int{}}},
		{"rotate empty is a no-op", Sequence{}, []Instruction{RotateA, ReverseRotateB, RotateBoth}, StackState{A: []int{}, B: []int{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.input)
			for _, op := range tt.ops {
				require.NoError(t, m.Apply(op))
			}
			if diff := cmp.Diff(tt.want, m.Snapshot()); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMachine_Errors(t *testing.T) {
	t.Run("push from empty", func(t *testing.T) {
		m := NewMachine(Sequence{1})
		err := m.Apply(PushA)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrEmptySource))

		var se *StackError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, PushA, se.Instruction)
	})

	t.Run("pb from empty A", func(t *testing.T) {
		m := NewMachine(Sequence{})
		assert.ErrorIs(t, m.Apply(PushB), ErrEmptySource)
	})

	t.Run("swap with one element leaves state unchanged", func(t *testing.T) {
		m := NewMachine(Sequence{1, 0, 2})
		require.NoError(t, m.Apply(PushB))
		require.NoError(t, m.Apply(PushB))
		before := m.Snapshot()

		err := m.Apply(SwapA)
		assert.ErrorIs(t, err, ErrInsufficientElements)
		assert.Equal(t, before, m.Snapshot())
		assert.Equal(t, []int{2}, m.Snapshot().A)
	})

	t.Run("ss fails if either stack is short and mutates nothing", func(t *testing.T) {
		m := NewMachine(Sequence{1, 2, 3})
		require.NoError(t, m.Apply(PushB))
		before := m.Snapshot()
		assert.ErrorIs(t, m.Apply(SwapBoth), ErrInsufficientElements)
		assert.Equal(t, before, m.Snapshot())
	})

	t.Run("unknown instruction", func(t *testing.T) {
		m := NewMachine(Sequence{1, 2})
		assert.Error(t, m.Apply(Instruction(0)))
	})
}

func TestMachine_KnownSolutionsSort(t *testing.T) {
	tests := []struct {
		input Sequence
		text  string
	}{
		{Sequence{2, 1, 3}, "sa"},
		{Sequence{3, 2, 1}, "sa rra"},
		{Sequence{1, 0, 3, 2}, "sa pb pb sa pa pa"},
		{Sequence{5, 1, 2, 3, 4}, "ra"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ins, err := ParseInstructions(tt.text)
			require.NoError(t, err)

			m := NewMachine(tt.input)
			assert.False(t, m.IsSorted())
			n, err := m.ApplyAll(ins)
			require.NoError(t, err)
			assert.Equal(t, len(ins), n)
			assert.True(t, m.IsSorted())
			assert.True(t, m.Snapshot().IsSorted())
		})
	}
}

func TestMachine_EmptyListOnSortedInput(t *testing.T) {
	m := NewMachine(Sequence{-3, 0, 4, 9})
	n, err := m.ApplyAll(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, m.IsSorted())
}

func TestMachine_NotSortedWhileBHoldsValues(t *testing.T) {
	m := NewMachine(Sequence{1, 2, 3})
	require.NoError(t, m.Apply(PushB))
	assert.False(t, m.IsSorted())
}

func TestMachine_MultisetInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := rng.Intn(12)
		input := make(Sequence, n)
		for i := range input {
			input[i] = i*3 - 7
		}
		rng.Shuffle(n, func(i, j int) { input[i], input[j] = input[j], input[i] })

		m := NewMachine(input)
		for step := 0; step < 100; step++ {
			ins := AllInstructions[rng.Intn(len(AllInstructions))]
			_ = m.Apply(ins)

			st := m.Snapshot()
			got := append(append([]int{}, st.A...), st.B...)
			sort.Ints(got)
			want := append([]int{}, input...)
			sort.Ints(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("round %d step %d (%s) changed the multiset (-want +got):\n%s", round, step, ins, diff)
			}
		}
	}
}

func TestMachine_InversesRestoreState(t *testing.T) {
	pairs := [][2]Instruction{
		{RotateA, ReverseRotateA},
		{ReverseRotateA, RotateA},
		{RotateB, ReverseRotateB},
		{ReverseRotateB, RotateB},
		{RotateBoth, ReverseRotateBoth},
		{SwapA, SwapA},
		{SwapB, SwapB},
		{SwapBoth, SwapBoth},
		{PushB, PushA},
	}
	for size := 1; size <= 6; size++ {
		input := make(Sequence, size)
		for i := range input {
			input[i] = size - i
		}
		for _, p := range pairs {
			m := NewMachine(input)
			// put half the values on B so both stacks are exercised
			for i := 0; i < size/2; i++ {
				require.NoError(t, m.Apply(PushB))
			}
			before := m.Snapshot()
			if err := m.Apply(p[0]); err != nil {
				continue
			}
			require.NoError(t, m.Apply(p[1]), "%s then %s", p[0], p[1])
			assert.Equal(t, before, m.Snapshot(), "size %d: %s then %s", size, p[0], p[1])
		}
	}
}
