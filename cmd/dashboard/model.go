package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/internal/version"
)

// Application states.
const (
	StateConnecting = iota
	StateIncompatible
	StateList
	StateDetail
)

const (
	refreshInterval = 2 * time.Second
	requestTimeout  = 5 * time.Second
)

// Model is the main Bubble Tea model for the simulation dashboard.
type Model struct {
	state         int
	api           SimulationAPI
	clientVersion string
	info          ServerInfo
	table         table.Model
	simulations   []types.Simulation
	report        *types.SimulationReport
	err           error
	notice        string
	width         int
	height        int
}

// NewModel creates a new Model that talks to api.
func NewModel(api SimulationAPI) Model {
	return Model{
		state:         StateConnecting,
		api:           api,
		clientVersion: version.GetVersion(),
		table:         NewSimulationTable(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.connect()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.state == StateDetail {
				m.state = StateList
				m.report = nil
				m.notice = ""
				return m, nil
			}
		case "r":
			if m.state == StateList || m.state == StateDetail {
				return m, m.refresh()
			}
		case "s":
			if id := m.selectedID(); id != "" {
				return m, m.stop(id)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case ConnectedMsg:
		m.info = msg.Info
		m.state = StateList
		return m, tea.Batch(m.refresh(), tick())

	case IncompatibleMsg:
		m.info = msg.Info
		m.err = msg.Err
		m.state = StateIncompatible
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case SimulationsMsg:
		m.err = nil
		m.simulations = msg.Simulations
		m.table = UpdateTableRows(m.table, m.simulations)
		return m, nil

	case ReportMsg:
		m.err = nil
		report := msg.Report
		m.report = &report
		return m, nil

	case StoppedMsg:
		m.notice = fmt.Sprintf("Stopped simulation %s", shortID(msg.Simulation.ID))
		return m, m.refresh()

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	if m.state == StateList {
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if id := m.selectedID(); id != "" {
			m.state = StateDetail
			m.notice = ""
			return m, m.fetchReport(id)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// selectedID is the simulation under the cursor in the list, or the one in the detail view.
func (m Model) selectedID() string {
	switch m.state {
	case StateDetail:
		if m.report != nil {
			return m.report.ID
		}
	case StateList:
		cursor := m.table.Cursor()
		if cursor >= 0 && cursor < len(m.simulations) {
			return m.simulations[cursor].ID
		}
	}

	return ""
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// connect fetches the server info and checks that its version works with this client.
func (m Model) connect() tea.Cmd {
	api, clientVersion := m.api, m.clientVersion

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		info, err := api.Info(ctx)
		if err != nil {
			return IncompatibleMsg{Err: err}
		}

		if err := version.CheckCompatibility(info.Version, clientVersion); err != nil {
			return IncompatibleMsg{Info: info, Err: err}
		}

		return ConnectedMsg{Info: info}
	}
}

// refresh reloads the list, and the report when the detail view is open.
func (m Model) refresh() tea.Cmd {
	api := m.api
	cmds := []tea.Cmd{func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sims, err := api.Simulations(ctx)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return SimulationsMsg{Simulations: sims}
	}}

	if m.state == StateDetail && m.report != nil {
		cmds = append(cmds, m.fetchReport(m.report.ID))
	}

	return tea.Batch(cmds...)
}

func (m Model) fetchReport(id string) tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		report, err := api.Status(ctx, id)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return ReportMsg{Report: report}
	}
}

func (m Model) stop(id string) tea.Cmd {
	api := m.api

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		sim, err := api.Stop(ctx, id)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		return StoppedMsg{Simulation: sim}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateConnecting:
		s.WriteString(TitleStyle.Render("Trading Simulator"))
		s.WriteString("\n\nConnecting to server...\n")

	case StateIncompatible:
		s.WriteString(TitleStyle.Render("Trading Simulator"))
		s.WriteString("\n\n")
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Cannot use this server: %v", m.err)))
		s.WriteString("\n")
		if m.info.Version != "" {
			s.WriteString(fmt.Sprintf("server %s, dashboard %s\n", m.info.Version, m.clientVersion))
		}
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit"))

	case StateList:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s %s (%s) - Simulations", m.info.Name, m.info.Version, m.info.Environment)))
		s.WriteString("\n\n")
		m.writeStatus(&s)

		if len(m.simulations) == 0 {
			s.WriteString("No simulations yet.\n")
		} else {
			s.WriteString(m.table.View())
			s.WriteString("\n")
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Enter: details | s: stop | r: refresh | q: quit"))

	case StateDetail:
		s.WriteString(TitleStyle.Render("Simulation"))
		s.WriteString("\n\n")
		m.writeStatus(&s)

		if m.report == nil {
			s.WriteString("Loading...\n")
		} else {
			s.WriteString(RenderReport(*m.report))
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("s: stop | r: refresh | Esc: back | q: quit"))
	}

	return s.String()
}

func (m Model) writeStatus(s *strings.Builder) {
	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if m.notice != "" {
		s.WriteString(m.notice)
		s.WriteString("\n\n")
	}
}
