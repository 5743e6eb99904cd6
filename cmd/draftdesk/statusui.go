// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Draftdesk Contributors

// Live provider health view for `draftdesk status --watch`, built on
// bubbletea's model/update/view loop. The gateway is polled every 30
// seconds; 'r' reactivates all providers immediately.

package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/draftdesk-dev/draftdesk/pkg/health"
)

const watchInterval = 30 * time.Second

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	availableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	quarantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type providersMsg []health.ProviderStatus

type watchErrMsg struct{ err error }

type watchTickMsg time.Time

// statusModel is the bubbletea model for the watch view.
type statusModel struct {
	gw      *gatewayClient
	addr    string
	table   table.Model
	spinner spinner.Model

	loaded      bool
	lastErr     error
	lastRefresh time.Time
}

func newStatusModel(gw *gatewayClient, addr string) statusModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "PRI", Width: 4},
			{Title: "PROVIDER", Width: 20},
			{Title: "STATE", Width: 12},
			{Title: "FAILURES", Width: 9},
			{Title: "DETAIL", Width: 48},
		}),
		table.WithHeight(8),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot

	return statusModel{
		gw:      gw,
		addr:    addr,
		table:   t,
		spinner: s,
	}
}

func (m statusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd())
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.reactivateCmd()
		}

	case watchTickMsg:
		return m, m.refreshCmd()

	case providersMsg:
		m.loaded = true
		m.lastErr = nil
		m.lastRefresh = time.Now()
		m.table.SetRows(providerRows(msg))
		return m, m.scheduleTick()

	case watchErrMsg:
		m.loaded = true
		m.lastErr = msg.err
		return m, m.scheduleTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m statusModel) View() string {
	header := titleStyle.Render("Draftdesk providers") + helpStyle.Render("  ·  "+m.addr)

	var body string
	switch {
	case !m.loaded:
		body = m.spinner.View() + " contacting gateway..."
	case m.lastErr != nil:
		body = errStyle.Render(fmt.Sprintf("error: %v", m.lastErr))
	default:
		body = m.table.View() + "\n" +
			helpStyle.Render(fmt.Sprintf("refreshed %s", m.lastRefresh.Format("15:04:05")))
	}

	help := helpStyle.Render("r reactivate all · q quit")
	return header + "\n\n" + body + "\n\n" + help + "\n"
}

// refreshCmd fetches the provider snapshot from the gateway.
func (m statusModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := fetchProviders(m.gw)
		if err != nil {
			return watchErrMsg{err: err}
		}
		return providersMsg(snapshot)
	}
}

// reactivateCmd lifts all quarantines and shows the resulting snapshot.
func (m statusModel) reactivateCmd() tea.Cmd {
	return func() tea.Msg {
		snapshot, err := reactivateProviders(m.gw)
		if err != nil {
			return watchErrMsg{err: err}
		}
		return providersMsg(snapshot)
	}
}

func (m statusModel) scheduleTick() tea.Cmd {
	return tea.Tick(watchInterval, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

func providerRows(snapshot []health.ProviderStatus) []table.Row {
	rows := make([]table.Row, 0, len(snapshot))
	for _, p := range snapshot {
		state := availableStyle.Render(string(p.State))
		if !p.Available {
			state = quarantStyle.Render(string(p.State))
		}
		rows = append(rows, table.Row{
			fmt.Sprint(p.Priority),
			p.DisplayName,
			state,
			fmt.Sprint(p.ConsecutiveFailures),
			statusDetail(p),
		})
	}
	return rows
}
