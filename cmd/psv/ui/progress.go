package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressMsg reports trials left.
type ProgressMsg struct {
	Remaining int
	Total     int
}

// FailureMsg reports a failed trial.
type FailureMsg struct {
	Trial  int
	Reason string
}

// DoneMsg ends the progress program.
type DoneMsg struct{}

// ProgressModel is the live view of a running benchmark.
type ProgressModel struct {
	title      string
	total      int
	remaining  int
	failures   []FailureMsg
	progress   progress.Model
	styles     Styles
	cancel     func()
	cancelling bool
	done       bool
}

// maxShownFailures caps the failure lines under the bar.
const maxShownFailures = 5

// NewProgressModel creates the view. cancel is called when the user presses
// ctrl+c or q; the view stays up until DoneMsg arrives.
func NewProgressModel(title string, total int, cancel func()) ProgressModel {
	p := progress.New(progress.WithDefaultGradient())
	return ProgressModel{
		title:     title,
		total:     total,
		remaining: total,
		progress:  p,
		styles:    DefaultStyles(),
		cancel:    cancel,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
	case tea.WindowSizeMsg:
		m.progress.Width = max(10, min(msg.Width-4, 80))
	case ProgressMsg:
		m.remaining = msg.Remaining
		m.total = msg.Total
	case FailureMsg:
		m.failures = append(m.failures, msg)
	case DoneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// Fraction is the share of finished trials.
func (m ProgressModel) Fraction() float64 {
	if m.total <= 0 {
		return 1
	}
	return float64(m.total-m.remaining) / float64(m.total)
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(m.title) + "\n\n")
	sb.WriteString(m.progress.ViewAs(m.Fraction()) + "\n")
	sb.WriteString(fmt.Sprintf("Trials left: %d of %d\n", m.remaining, m.total))

	if n := len(m.failures); n > 0 {
		sb.WriteString(m.styles.Error.Render(fmt.Sprintf("%d failed", n)) + "\n")
		start := max(0, n-maxShownFailures)
		for _, f := range m.failures[start:] {
			sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("  trial %d: %s", f.Trial, f.Reason)) + "\n")
		}
	}
	switch {
	case m.done:
	case m.cancelling:
		sb.WriteString(m.styles.Warning.Render("Cancelling, waiting for running trials...") + "\n")
	default:
		sb.WriteString(m.styles.Muted.Render("q / ctrl+c to stop") + "\n")
	}
	return sb.String()
}

// PlainProgress prints "\rTrials left: N" updates for non-interactive output.
type PlainProgress struct {
	w     io.Writer
	width int
}

// NewPlainProgress pads counts to the width of total.
func NewPlainProgress(w io.Writer, total int) *PlainProgress {
	return &PlainProgress{w: w, width: len(fmt.Sprint(total))}
}

// Update writes the current count over the previous one.
func (p *PlainProgress) Update(remaining int) {
	fmt.Fprintf(p.w, "\rTrials left: %-*d", p.width, remaining)
}

// Finish ends the line.
func (p *PlainProgress) Finish() {
	fmt.Fprintln(p.w)
}
