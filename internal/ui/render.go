package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"eiractl/internal/models"
)

const waitingText = "Waiting for extraction..."

// StatusView is what gets drawn for one status snapshot.
type StatusView struct {
	Percent int
	Text    string
	Logs    []string
}

// Fraction is Percent as a 0..1 value for progress bars.
func (v StatusView) Fraction() float64 {
	return float64(v.Percent) / 100
}

// RenderStatus maps a snapshot to a view. A zero total renders as 0% and the
// waiting message. Logs are the snapshot's logs and nothing else.
func RenderStatus(snapshot *models.StatusSnapshot) StatusView {
	if snapshot == nil {
		return StatusView{Text: waitingText, Logs: []string{}}
	}

	logs := snapshot.Logs
	if logs == nil {
		logs = []string{}
	}

	if snapshot.Total == 0 {
		return StatusView{Text: waitingText, Logs: logs}
	}

	percent := int(math.Round(float64(snapshot.Current) / float64(snapshot.Total) * 100))
	return StatusView{
		Percent: percent,
		Text:    fmt.Sprintf("Processed %d of %d videos (%d%%)", snapshot.Current, snapshot.Total, percent),
		Logs:    logs,
	}
}

type Styles struct {
	Info   lipgloss.Style
	Error  lipgloss.Style
	Header lipgloss.Style
	Muted  lipgloss.Style
	Log    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("#3a7bd5")),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Header: lipgloss.NewStyle().Foreground(lipgloss.Color("#2d3a4b")).Bold(true),
		Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Log:    lipgloss.NewStyle().PaddingLeft(2),
	}
}

// Line colors text by state.
func (s Styles) Line(text string, state State) string {
	if state == StateError {
		return s.Error.Render(text)
	}
	return s.Info.Render(text)
}

// Result colors a dispatcher result string.
func (s Styles) Result(result string) string {
	if strings.HasPrefix(result, "Error:") {
		return s.Error.Render(result)
	}
	return s.Header.Render(result)
}

// LogList renders one line per log entry.
func (s Styles) LogList(logs []string) string {
	lines := make([]string, 0, len(logs))
	for _, entry := range logs {
		lines = append(lines, s.Log.Render(entry))
	}
	return strings.Join(lines, "\n")
}

// PlainStatus renders a view without a progress bar widget.
func PlainStatus(view StatusView) string {
	var b strings.Builder
	b.WriteString(view.Text)
	for _, entry := range view.Logs {
		b.WriteString("\n  ")
		b.WriteString(entry)
	}
	return b.String()
}
