package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kabuchart/internal/viewer"
)

// startupMsg carries the ticker list and news.
type startupMsg struct {
	startup viewer.Startup
}

// chartMsg carries a finished chart request.
type chartMsg struct {
	req viewer.Request
	res *viewer.Result
	err error
}

// splashMsg advances the splash screen to stage.
type splashMsg struct {
	stage int
}

func (m Model) startupCmd() tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return startupMsg{startup: ctrl.FetchStartup(ctx)}
	}
}

func (m Model) fetchCmd(req viewer.Request) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := ctrl.Fetch(ctx, req)
		return chartMsg{req: req, res: res, err: err}
	}
}

func splashCmd(delay time.Duration, stage int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return splashMsg{stage: stage}
	})
}
