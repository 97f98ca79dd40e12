package ui

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTable(t *testing.T) {
	table := NewSimpleTable("Run", []string{"Trials", "Min"})
	assert.Empty(t, table.View(DefaultStyles()), "no rows renders nothing")

	table.AddRow("10/10", "3")
	table.AddRow("short")
	out := table.View(DefaultStyles())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Run")
	assert.Contains(t, lines[1], "Trials")
	assert.Contains(t, lines[3], "10/10")
	assert.Contains(t, lines[4], "short")
}

func TestProgressModel(t *testing.T) {
	cancelled := 0
	m := NewProgressModel("bench", 4, func() { cancelled++ })
	assert.Equal(t, 0.0, m.Fraction())

	next, cmd := m.Update(ProgressMsg{Remaining: 1, Total: 4})
	assert.Nil(t, cmd)
	m = next.(ProgressModel)
	assert.InDelta(t, 0.75, m.Fraction(), 1e-9)
	assert.Contains(t, m.View(), "Trials left: 1 of 4")

	for i := 1; i <= 7; i++ {
		next, _ = m.Update(FailureMsg{Trial: i, Reason: "not-sorted"})
		m = next.(ProgressModel)
	}
	view := m.View()
	assert.Contains(t, view, "7 failed")
	assert.NotContains(t, view, "trial 2:")
	assert.Contains(t, view, "trial 7: not-sorted")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(ProgressModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(ProgressModel)
	assert.Equal(t, 1, cancelled, "cancel runs once")
	assert.Contains(t, m.View(), "Cancelling")

	_, cmd = m.Update(DoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestProgressModel_EmptyRun(t *testing.T) {
	m := NewProgressModel("bench", 0, nil)
	assert.Equal(t, 1.0, m.Fraction())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(ProgressModel).cancelling)
}

func TestPlainProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlainProgress(&buf, 100)
	p.Update(100)
	p.Update(7)
	p.Finish()
	assert.Equal(t, "\rTrials left: 100\rTrials left: 7  \n", buf.String())
}

func TestDetectTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "15;0")
	assert.True(t, DetectTheme().IsDark)

	t.Setenv("COLORFGBG", "0;15")
	t.Setenv("PSV_DARK_MODE", "")
	assert.False(t, DetectTheme().IsDark)

	t.Setenv("PSV_DARK_MODE", "1")
	assert.True(t, DetectTheme().IsDark)
}
