package main

import (
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
)

// ConnectedMsg reports the server after a successful version check.
type ConnectedMsg struct {
	Info ServerInfo
}

// IncompatibleMsg reports a server this dashboard cannot talk to.
type IncompatibleMsg struct {
	Info ServerInfo
	Err  error
}

// SimulationsMsg carries a refreshed simulation list.
type SimulationsMsg struct {
	Simulations []types.Simulation
}

// ReportMsg carries the status report of the simulation in the detail view.
type ReportMsg struct {
	Report types.SimulationReport
}

// StoppedMsg confirms a stopped simulation.
type StoppedMsg struct {
	Simulation types.Simulation
}

// ErrorMsg indicates a failed API call.
type ErrorMsg struct {
	Err error
}

// TickMsg triggers the periodic refresh.
type TickMsg time.Time
