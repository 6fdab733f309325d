package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/trading-simulator/internal/app"
	"github.com/rxtech-lab/trading-simulator/internal/backtest/engine"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/simulation"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// tradeRow is one line of trades.csv.
type tradeRow struct {
	OrderID       string    `csv:"order_id"`
	Symbol        string    `csv:"symbol"`
	Side          string    `csv:"side"`
	Reason        string    `csv:"reason"`
	Message       string    `csv:"message"`
	Strategy      string    `csv:"strategy"`
	ExecutedAt    time.Time `csv:"executed_at"`
	ExecutedQty   float64   `csv:"executed_qty"`
	ExecutedPrice float64   `csv:"executed_price"`
	Fee           float64   `csv:"fee"`
	PnL           float64   `csv:"pnl"`
}

func tradeRows(trades []types.Trade) []tradeRow {
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, tradeRow{
			OrderID:       t.Order.OrderID,
			Symbol:        t.Order.Symbol,
			Side:          string(t.Order.Side),
			Reason:        t.Order.Reason.Reason,
			Message:       t.Order.Reason.Message,
			Strategy:      t.Order.StrategyName,
			ExecutedAt:    t.ExecutedAt,
			ExecutedQty:   t.ExecutedQty,
			ExecutedPrice: t.ExecutedPrice,
			Fee:           t.Fee,
			PnL:           t.PnL,
		})
	}

	return rows
}

// writeResults stores the summary as stats.yaml and the fills as trades.csv in dir.
func writeResults(dir string, result types.BacktestResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := types.WriteBacktestResults(filepath.Join(dir, "stats.yaml"), []types.BacktestResult{result}); err != nil {
		return err
	}

	file, err := os.Create(filepath.Join(dir, "trades.csv"))
	if err != nil {
		return fmt.Errorf("failed to create trades file: %w", err)
	}
	defer file.Close()

	rows := tradeRows(result.Trades)
	if len(rows) == 0 {
		// gocsv writes no header for an empty slice
		_, err = file.WriteString("order_id,symbol,side,reason,message,strategy,executed_at,executed_qty,executed_price,fee,pnl\n")
		return err
	}

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write trades: %w", err)
	}

	return nil
}

func progressCallback(bar *progressbar.ProgressBar) engine.OnProcessDataCallback {
	return func(current int, total int) error {
		if bar.GetMax() != total {
			bar.ChangeMax(total)
		}

		return bar.Set(current)
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	client, candles, err := app.OpenMarket(cfg, logger.NewNopLogger(), nil)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}
	if candles != nil {
		defer candles.Close()
	}

	manager := simulation.NewManager(cfg.Simulation, client, storage.NewMemoryRepository(), nil, logger.NewNopLogger())
	defer manager.Shutdown(context.Background())

	bar := progressbar.Default(-1, "Backtesting")
	onProcess := progressCallback(bar)

	result, err := manager.Backtest(ctx, types.BacktestRequest{
		Strategy:       cmd.String("strategy"),
		Symbol:         cmd.String("symbol"),
		Exchange:       cmd.String("exchange"),
		Timeframe:      cmd.String("timeframe"),
		StartDate:      cmd.Timestamp("start"),
		EndDate:        cmd.Timestamp("end"),
		InitialBalance: float64(cmd.Float("balance")),
		Params:         cmd.String("params"),
	}, engine.LifecycleCallbacks{OnProcessData: &onProcess})
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	dir := filepath.Join(cmd.String("output"), result.ID)
	if err := writeResults(dir, result); err != nil {
		return err
	}

	log.Printf("%s on %s: %.2f%% return, %d trades, %.2f%% win rate, results in %s",
		result.Strategy, result.Symbol, result.ReturnRate, result.TotalTrades, result.WinRate, dir)

	return nil
}

func main() {
	dateLayouts := cli.TimestampConfig{Layouts: []string{"2006-01-02", time.RFC3339}}

	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a strategy over historical candles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "strategy",
				Usage:    "Strategy to run: arbitrage, leverage_trading or meme_trading",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Symbol to backtest, e.g. BTC/USDT",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "exchange",
				Aliases: []string{"x"},
				Usage:   "Exchange providing the candles. Defaults to market.default_exchange",
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"f"},
				Usage:   "Candle timeframe, e.g. 1h or 1d",
				Value:   string(types.Timeframe1d),
			},
			&cli.TimestampFlag{
				Name:     "start",
				Aliases:  []string{"s"},
				Usage:    "Start date in `YYYY-MM-DD` format",
				Config:   dateLayouts,
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to now.",
				Value:   time.Now(),
				Config:  dateLayouts,
			},
			&cli.FloatFlag{
				Name:  "balance",
				Usage: "Initial balance. Defaults to simulation.default_initial_balance",
			},
			&cli.StringFlag{
				Name:  "params",
				Usage: "Strategy parameters as a JSON object",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for stats.yaml and trades.csv",
				Value:   "results",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
