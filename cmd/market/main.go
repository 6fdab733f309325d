package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/app"
	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// progressReporter feeds download progress into the bar, resizing it once the total is known.
func progressReporter(bar *progressbar.ProgressBar) marketdata.OnDownloadProgress {
	return func(current float64, total float64, message string) {
		if int64(total) > 0 && bar.GetMax64() != int64(total) {
			bar.ChangeMax64(int64(total))
		}

		bar.Describe(message)
		_ = bar.Set64(int64(current))
	}
}

// downloadAction downloads candles of one symbol into the DuckDB cache.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if path := cmd.String("cache"); path != "" {
		cfg.Market.CachePath = path
	}

	if cfg.Market.CachePath == "" {
		return fmt.Errorf("a cache path is required, set --cache or market.cache_path")
	}

	exchange, err := parseExchange(cmd.String("exchange"))
	if err != nil {
		return err
	}

	timeframe, err := types.ParseTimeframe(cmd.String("timeframe"), types.Timeframe1h)
	if err != nil {
		return err
	}

	client, candles, err := app.OpenMarket(cfg, logger.NewNopLogger(), nil)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}
	defer candles.Close()

	params := marketdata.DownloadParams{
		Exchange:  string(exchange),
		Symbol:    cmd.String("symbol"),
		Timeframe: timeframe,
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
	}

	log.Printf("Starting download of %s %s candles from %s to %s on %s...",
		params.Symbol, timeframe, params.StartDate.Format("2006-01-02"), params.EndDate.Format("2006-01-02"), exchange)

	bar := progressbar.Default(-1, "Downloading")
	stored, err := client.Download(ctx, params, progressReporter(bar))
	_ = bar.Finish()

	if err != nil {
		return fmt.Errorf("download failed after %d candles: %w", stored, err)
	}

	log.Printf("Download completed, %d candles stored in %s", stored, cfg.Market.CachePath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "market",
		Usage: "Download historical candles into the local cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"t"},
				Usage:    "Symbol to download, e.g. BTC/USDT or AAPL",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "exchange",
				Aliases: []string{"x"},
				Usage:   "Exchange to download from (binance or polygon)",
				Value:   "binance",
			},
			&cli.StringFlag{
				Name:    "timeframe",
				Aliases: []string{"f"},
				Usage:   "Candle timeframe, e.g. 1m, 1h, 1d",
				Value:   string(types.Timeframe1h),
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to now.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "cache",
				Aliases: []string{"d"},
				Usage:   "Path of the DuckDB candle cache, overrides market.cache_path",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
