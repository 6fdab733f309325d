package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type BacktestCommandTestSuite struct {
	suite.Suite
}

func TestBacktestCommandSuite(t *testing.T) {
	suite.Run(t, new(BacktestCommandTestSuite))
}

func (suite *BacktestCommandTestSuite) result() types.BacktestResult {
	executed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	return types.BacktestResult{
		ID:             "bt-1",
		Strategy:       types.StrategyType("arbitrage"),
		Symbol:         "BTC/USDT",
		Exchange:       "binance",
		Timeframe:      types.Timeframe1d,
		InitialBalance: 1000,
		FinalBalance:   1100,
		ProfitLoss:     100,
		ReturnRate:     10,
		TotalTrades:    2,
		Trades: []types.Trade{
			{
				Order:         types.Order{OrderID: "o-1", Symbol: "BTC/USDT", Side: types.PurchaseTypeBuy, StrategyName: "arbitrage"},
				ExecutedAt:    executed,
				ExecutedQty:   1,
				ExecutedPrice: 100,
			},
			{
				Order: types.Order{
					OrderID:      "o-2",
					Symbol:       "BTC/USDT",
					Side:         types.PurchaseTypeSell,
					StrategyName: "arbitrage",
					Reason:       types.Reason{Reason: types.OrderReasonStrategy, Message: "close back above the moving average"},
				},
				ExecutedAt:    executed.Add(24 * time.Hour),
				ExecutedQty:   1,
				ExecutedPrice: 110,
				PnL:           10,
			},
		},
	}
}

func (suite *BacktestCommandTestSuite) TestWriteResults() {
	dir := filepath.Join(suite.T().TempDir(), "bt-1")
	suite.Require().NoError(writeResults(dir, suite.result()))

	data, err := os.ReadFile(filepath.Join(dir, "stats.yaml"))
	suite.Require().NoError(err)

	var stats []types.BacktestResult
	suite.Require().NoError(yaml.Unmarshal(data, &stats))
	suite.Require().Len(stats, 1)
	suite.Equal("bt-1", stats[0].ID)
	suite.Equal(10.0, stats[0].ReturnRate)
	suite.Empty(stats[0].Trades)

	file, err := os.Open(filepath.Join(dir, "trades.csv"))
	suite.Require().NoError(err)
	defer file.Close()

	var rows []tradeRow
	suite.Require().NoError(gocsv.UnmarshalFile(file, &rows))
	suite.Require().Len(rows, 2)
	suite.Equal("o-1", rows[0].OrderID)
	suite.Equal(string(types.PurchaseTypeSell), rows[1].Side)
	suite.Equal(10.0, rows[1].PnL)
	suite.Equal(types.OrderReasonStrategy, rows[1].Reason)
	suite.Equal("close back above the moving average", rows[1].Message)
}

func (suite *BacktestCommandTestSuite) TestWriteResultsWithoutTrades() {
	result := suite.result()
	result.Trades = nil

	dir := suite.T().TempDir()
	suite.Require().NoError(writeResults(dir, result))

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	suite.Require().NoError(err)
	suite.Contains(string(data), "order_id,symbol,side,reason,message")
}

func (suite *BacktestCommandTestSuite) TestProgressCallback() {
	bar := progressbar.NewOptions(-1, progressbar.OptionSetWriter(io.Discard))
	callback := progressCallback(bar)

	suite.NoError(callback(5, 20))
	suite.Equal(20, bar.GetMax())
	suite.InDelta(0.25, bar.State().CurrentPercent, 0.001)
}
