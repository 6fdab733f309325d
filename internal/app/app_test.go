package app

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/rxtech-lab/trading-simulator/internal/storage"
	"github.com/stretchr/testify/suite"
)

type AppTestSuite struct {
	suite.Suite
	cfg config.Config
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

func (suite *AppTestSuite) SetupTest() {
	dir := suite.T().TempDir()

	suite.cfg = config.Default()
	suite.cfg.Server.Host = "127.0.0.1"
	suite.cfg.Server.Port = 0
	suite.cfg.Market.DefaultExchange = "synthetic"
	suite.cfg.Market.CachePath = ""
	suite.cfg.Log.FilePath = filepath.Join(dir, "app.log")
	suite.cfg.Log.ErrorFilePath = filepath.Join(dir, "error.log")
}

func (suite *AppTestSuite) TestRunServesAPI() {
	a, err := New(suite.cfg, nil)
	suite.Require().NoError(err)

	suite.IsType(&storage.MemoryRepository{}, a.Repository)
	suite.Nil(a.candles)

	suite.Require().NoError(a.Run(context.Background()))
	suite.NotEmpty(a.Server.Addr())

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + a.Server.Addr() + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]any
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.Equal("healthy", body["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	suite.NoError(a.Close(ctx))
}

func (suite *AppTestSuite) TestDuckDBCacheIsOpenedWhenConfigured() {
	suite.cfg.Market.CachePath = filepath.Join(suite.T().TempDir(), "candles.duckdb")

	a, err := New(suite.cfg, nil)
	suite.Require().NoError(err)
	suite.NotNil(a.candles)

	suite.NoError(a.Close(context.Background()))
}

func (suite *AppTestSuite) TestUnknownDefaultExchangeFails() {
	suite.cfg.Market.DefaultExchange = "kraken"

	_, err := New(suite.cfg, nil)
	suite.Error(err)
}

func (suite *AppTestSuite) TestTelegramPublisherIsAdded() {
	suite.cfg.Telegram.Enabled = true
	suite.cfg.Telegram.BotToken = "token"
	suite.cfg.Telegram.ChatID = "chat"

	a, err := New(suite.cfg, nil)
	suite.Require().NoError(err)
	defer a.Close(context.Background())

	suite.Len(a.Publisher.Publishers(), 2)
}
