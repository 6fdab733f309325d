package main

import (
	"context"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/trading-simulator/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:    "dashboard",
		Usage:   "Watch and stop simulations of a running trading simulator",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the simulator API",
				Value:   "http://localhost:8000",
				Sources: cli.EnvVars("SIMULATOR_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			program := tea.NewProgram(NewModel(NewClient(cmd.String("server"))), tea.WithAltScreen(), tea.WithContext(ctx))
			_, err := program.Run()

			return err
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
