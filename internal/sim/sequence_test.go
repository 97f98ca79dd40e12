package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Validate(t *testing.T) {
	assert.NoError(t, Sequence{3, -1, 8}.Validate())
	assert.ErrorIs(t, Sequence{3, -1, 3}.Validate(), ErrDuplicateValue)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Sequence{2, 0, 3, 1}, Normalize(Sequence{40, -12, 99, 7}))
	assert.Empty(t, Normalize(nil))
}

func TestParseSequence(t *testing.T) {
	got, err := ParseSequence(" 3 -2\n 10 ")
	require.NoError(t, err)
	assert.Equal(t, Sequence{3, -2, 10}, got)
	assert.Equal(t, "3 -2 10", got.String())
	assert.Equal(t, []string{"3", "-2", "10"}, got.Args())

	_, err = ParseSequence("1 two 3")
	assert.Error(t, err)

	_, err = ParseSequence("1 2 1")
	assert.ErrorIs(t, err, ErrDuplicateValue)
}

func TestSequence_CloneIsIndependent(t *testing.T) {
	s := Sequence{1, 2, 3}
	c := s.Clone()
	c[0] = 99
	assert.Equal(t, 1, s[0])
	assert.Nil(t, Sequence(nil).Clone())
}
