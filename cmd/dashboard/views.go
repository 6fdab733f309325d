package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/trading-simulator/internal/types"
)

const shortIDLength = 8

// NewSimulationTable creates the table of simulations.
func NewSimulationTable() table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Strategy", Width: 18},
		{Title: "Symbol", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Balance", Width: 16},
		{Title: "P/L", Width: 12},
		{Title: "Trades", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}

	return id[:shortIDLength]
}

// UpdateTableRows replaces the rows with the given simulations, in order.
func UpdateTableRows(t table.Model, sims []types.Simulation) table.Model {
	rows := make([]table.Row, 0, len(sims))

	for _, sim := range sims {
		rows = append(rows, table.Row{
			shortID(sim.ID),
			string(sim.Strategy),
			sim.Symbol,
			string(sim.Status),
			fmt.Sprintf("%.2f", sim.CurrentBalance),
			FormatProfitRate(sim.ProfitRate()),
			fmt.Sprintf("%d", sim.TotalTrades),
		})
	}

	t.SetRows(rows)

	if t.Cursor() >= len(rows) && len(rows) > 0 {
		t.SetCursor(len(rows) - 1)
	}

	return t
}

// RenderReport renders the detail view of a simulation.
func RenderReport(report types.SimulationReport) string {
	var s strings.Builder

	field := func(label, value string) {
		s.WriteString(LabelStyle.Render(label))
		s.WriteString(value)
		s.WriteString("\n")
	}

	field("ID", report.ID)
	field("Strategy", string(report.Strategy))
	field("Symbol", fmt.Sprintf("%s on %s", report.Symbol, report.Exchange))
	field("Status", string(report.Status))
	field("Data source", string(report.DataSource))
	field("Initial balance", fmt.Sprintf("%.2f", report.InitialBalance))
	field("Current balance", fmt.Sprintf("%.2f", report.CurrentBalance))
	field("Profit / loss", fmt.Sprintf("%.2f (%s)", report.ProfitLossAmt, FormatProfitRate(report.ProfitRatePct)))
	field("Last price", fmt.Sprintf("%.4f", report.LastPrice))
	field("Position", fmt.Sprintf("%.8f", report.PositionQuantity))
	field("Elapsed", fmt.Sprintf("%.1fh of %.1fh", report.ElapsedHours, report.DurationHours))
	field("Trades", fmt.Sprintf("%d", report.TotalTrades))

	if report.Error != "" {
		field("Error", report.Error)
	}

	if len(report.RecentTrades) > 0 {
		s.WriteString("\n")
		s.WriteString(TitleStyle.Render("Recent trades"))
		s.WriteString("\n")

		for _, trade := range report.RecentTrades {
			s.WriteString(fmt.Sprintf("%s  %-4s %.8f @ %.4f  pnl %.2f\n",
				trade.ExecutedAt.Format("01-02 15:04:05"),
				trade.Order.Side,
				trade.ExecutedQty,
				trade.ExecutedPrice,
				trade.PnL,
			))
		}
	}

	return s.String()
}
