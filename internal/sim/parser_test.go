package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstructions(t *testing.T) {
	got, err := ParseInstructions("pb\npb\n  sa ra\trra\nrrr\n")
	require.NoError(t, err)
	assert.Equal(t, []Instruction{PushB, PushB, SwapA, RotateA, ReverseRotateA, ReverseRotateBoth}, got)
}

func TestParseInstructions_Empty(t *testing.T) {
	got, err := ParseInstructions("  \n\n")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseInstructions_Malformed(t *testing.T) {
	got, err := ParseInstructions("foo bar")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrMalformedInstruction))

	var me *MalformedInstructionError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "foo", me.Token)
	assert.Equal(t, 1, me.Position)
}

func TestParseInstructions_DiscardsPartialResult(t *testing.T) {
	got, err := ParseInstructions("pb pa SA ra")
	assert.Nil(t, got)

	var me *MalformedInstructionError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "SA", me.Token)
	assert.Equal(t, 3, me.Position)
}

func TestInstruction_RoundTripTokens(t *testing.T) {
	for _, ins := range AllInstructions {
		got, ok := LookupInstruction(ins.String())
		require.True(t, ok, ins.String())
		assert.Equal(t, ins, got)
		assert.True(t, ins.Valid())
		assert.Equal(t, ins, ins.Inverse().Inverse())
	}
	assert.False(t, Instruction(0).Valid())
	assert.Equal(t, "Instruction(0)", Instruction(0).String())
}

func TestFormatInstructions(t *testing.T) {
	assert.Equal(t, "pb\nrra\n", FormatInstructions([]Instruction{PushB, ReverseRotateA}))
}
