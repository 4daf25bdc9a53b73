package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

const maxBarWidth = 60

// WatchModel shows the latest status snapshot. Each snapshot replaces the
// previous view outright.
type WatchModel struct {
	server   string
	progress progress.Model
	styles   Styles
	view     StatusView
	received bool
	updated  time.Time
	now      func() time.Time
	quitting bool
}

func NewWatchModel(server string) WatchModel {
	return WatchModel{
		server: server,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
		),
		styles: DefaultStyles(),
		view:   RenderStatus(nil),
		now:    time.Now,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return nil
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width > maxBarWidth {
			width = maxBarWidth
		}
		if width > 10 {
			m.progress.Width = width
		}
	case SnapshotMsg:
		m.view = RenderStatus(msg.Snapshot)
		m.received = true
		m.updated = m.now()
	}
	return m, nil
}

// Current returns the view built from the latest snapshot.
func (m WatchModel) Current() StatusView {
	return m.view
}

func (m WatchModel) Quitting() bool {
	return m.quitting
}
