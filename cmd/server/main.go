package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/app"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// loadConfig reads the configuration and applies the command line overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}

	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}

	return cfg, cfg.Validate()
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLoggerWithConfig(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting trading simulator",
		zap.String("version", version.GetVersion()),
		zap.String("environment", cfg.App.Environment),
	)

	application, err := app.New(cfg, appLogger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		_ = application.Close(context.Background())

		return err
	}

	<-ctx.Done()
	appLogger.Info("Shutting down")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := application.Close(shutdownCtx); err != nil {
		appLogger.Error("Shutdown finished with errors", zap.Error(err))

		return err
	}

	appLogger.Info("Shutdown complete")

	return nil
}

func newCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:    "trading-simulator",
		Usage:   "Run the trading simulator API server",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Address to listen on, overrides server.host",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on, overrides server.port",
			},
		},
		Action: action,
	}
}

func main() {
	if err := newCommand(serveAction).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
