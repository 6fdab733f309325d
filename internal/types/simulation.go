package types

import (
	"time"
)

// SimulationStatus is the lifecycle state of a paper simulation.
type SimulationStatus string

const (
	SimulationStatusRunning   SimulationStatus = "running"
	SimulationStatusCompleted SimulationStatus = "completed"
	SimulationStatusStopped   SimulationStatus = "stopped"
	SimulationStatusError     SimulationStatus = "error"
)

// IsFinished reports whether the simulation can no longer change.
func (s SimulationStatus) IsFinished() bool {
	return s != SimulationStatusRunning
}

// StartSimulationRequest starts a live paper simulation.
// Zero values for InitialBalance and DurationHours fall back to configured defaults.
type StartSimulationRequest struct {
	Strategy       string  `json:"strategy" validate:"required"`
	Symbol         string  `json:"symbol" validate:"required"`
	Exchange       string  `json:"exchange"`
	InitialBalance float64 `json:"initial_balance" validate:"gte=0"`
	DurationHours  float64 `json:"duration_hours" validate:"gte=0"`
	// Params is a JSON object merged onto the strategy defaults.
	Params string `json:"params"`
}

// Simulation is a snapshot of a paper simulation.
type Simulation struct {
	ID               string           `json:"id"`
	Strategy         StrategyType     `json:"strategy"`
	Symbol           string           `json:"symbol"`
	Exchange         string           `json:"exchange"`
	InitialBalance   float64          `json:"initial_balance"`
	CurrentBalance   float64          `json:"current_balance"`
	Cash             float64          `json:"cash"`
	PositionQuantity float64          `json:"position_quantity"`
	StartPrice       float64          `json:"start_price"`
	LastPrice        float64          `json:"last_price"`
	DurationHours    float64          `json:"duration_hours"`
	StartedAt        time.Time        `json:"started_at"`
	EndsAt           time.Time        `json:"ends_at"`
	EndedAt          *time.Time       `json:"ended_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Status           SimulationStatus `json:"status"`
	Error            string           `json:"error,omitempty"`
	DataSource       DataSource       `json:"data_source"`
	// Trades holds the most recent trades only; TotalTrades keeps the full count.
	Trades      []Trade `json:"trades"`
	TotalTrades int     `json:"total_trades"`
}

// ProfitLoss is the change of the balance since the start.
func (s Simulation) ProfitLoss() float64 {
	return s.CurrentBalance - s.InitialBalance
}

// ProfitRate is the profit or loss in percent of the initial balance.
func (s Simulation) ProfitRate() float64 {
	if s.InitialBalance == 0 {
		return 0
	}

	return s.ProfitLoss() / s.InitialBalance * 100
}

// AppendTrades adds trades and trims the retained history: once more than limit
// trades are held only the newest keep trades remain.
func (s *Simulation) AppendTrades(trades []Trade, limit int, keep int) {
	if len(trades) == 0 {
		return
	}

	s.Trades = append(s.Trades, trades...)
	s.TotalTrades += len(trades)

	if limit > 0 && len(s.Trades) > limit {
		if keep <= 0 || keep > limit {
			keep = limit
		}

		trimmed := make([]Trade, keep)
		copy(trimmed, s.Trades[len(s.Trades)-keep:])
		s.Trades = trimmed
	}
}

// RecentTrades returns up to n of the newest trades, oldest first.
func (s Simulation) RecentTrades(n int) []Trade {
	if n <= 0 || len(s.Trades) == 0 {
		return []Trade{}
	}

	if len(s.Trades) <= n {
		return append([]Trade{}, s.Trades...)
	}

	return append([]Trade{}, s.Trades[len(s.Trades)-n:]...)
}

// SimulationReport is the status view of a simulation.
type SimulationReport struct {
	Simulation
	ElapsedHours   float64 `json:"elapsed_hours"`
	RemainingHours float64 `json:"remaining_hours"`
	ProfitLossAmt  float64 `json:"profit_loss"`
	ProfitRatePct  float64 `json:"profit_rate"`
	RecentTrades   []Trade `json:"recent_trades"`
}

// NewSimulationReport builds the report of a simulation as seen at now.
func NewSimulationReport(sim Simulation, now time.Time) SimulationReport {
	end := now
	if sim.EndedAt != nil {
		end = *sim.EndedAt
	}

	elapsed := end.Sub(sim.StartedAt).Hours()
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := 0.0
	if sim.Status == SimulationStatusRunning {
		remaining = sim.EndsAt.Sub(now).Hours()
		if remaining < 0 {
			remaining = 0
		}
	}

	report := SimulationReport{
		Simulation:     sim,
		ElapsedHours:   elapsed,
		RemainingHours: remaining,
		ProfitLossAmt:  sim.ProfitLoss(),
		ProfitRatePct:  sim.ProfitRate(),
		RecentTrades:   sim.RecentTrades(5),
	}
	return report
}
