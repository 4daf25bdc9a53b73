package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"eiractl/internal/models"
	"eiractl/internal/poller"
)

func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.styles.Header.Render("EIRA processing status") + " " + m.styles.Muted.Render(m.server),
		"",
		m.progress.ViewAs(m.view.Fraction()),
		m.styles.Info.Render(m.view.Text),
		"",
	}

	if len(m.view.Logs) > 0 {
		sections = append(sections, m.styles.Header.Render("Logs"), m.styles.LogList(m.view.Logs))
	} else {
		sections = append(sections, m.styles.Muted.Render("No log entries"))
	}

	footer := "q to quit"
	if m.received {
		footer = fmt.Sprintf("updated %s  %s", m.updated.Format("15:04:05"), footer)
	} else {
		footer = "waiting for first response  " + footer
	}
	sections = append(sections, "", m.styles.Muted.Render(footer))

	return strings.Join(sections, "\n") + "\n"
}

// NewStatusPoller polls fetcher for snapshots at the given interval.
func NewStatusPoller(fetcher StatusFetcher, interval time.Duration) *poller.Poller {
	return poller.New(interval, fetcher.Status, nil)
}

// RunWatch starts the interactive status view and polls until the user quits.
func RunWatch(ctx context.Context, fetcher StatusFetcher, interval time.Duration, server string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := NewStatusPoller(fetcher, interval)

	program := tea.NewProgram(NewWatchModel(server))

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx, func(snapshot *models.StatusSnapshot) {
			program.Send(SnapshotMsg{Snapshot: snapshot})
		})
	}()

	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, err := program.Run()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("status view error: %w", err)
	}
	return nil
}
