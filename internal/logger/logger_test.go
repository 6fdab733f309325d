package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/trading-simulator/internal/config"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zapcore"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestLoggerSync() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// Sync may fail on stdout for some systems but must not panic
	_ = logger.Sync()
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	// Sync should not panic and should return nil for a nil inner logger
	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestLoggerLogging() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// These should not panic
	logger.Info("test info message")
	logger.Debug("test debug message")
	logger.Warn("test warn message")
	logger.Error("test error message")
}

func (suite *LoggerTestSuite) TestLoggerWithFields() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)

	// Should not panic
	logger.With().Info("test message with fields")
}

func (suite *LoggerTestSuite) TestNewLoggerWithConfigWritesFiles() {
	dir := suite.T().TempDir()
	cfg := config.LogConfig{
		Level:         "debug",
		FilePath:      filepath.Join(dir, "logs", "app.log"),
		ErrorFilePath: filepath.Join(dir, "logs", "error.log"),
	}

	logger, err := NewLoggerWithConfig(cfg)
	suite.Require().NoError(err)

	logger.Info("simulation started")
	logger.Error("exchange unavailable")
	_ = logger.Sync()

	app, err := os.ReadFile(cfg.FilePath)
	suite.Require().NoError(err)
	suite.Contains(string(app), "simulation started")
	suite.Contains(string(app), "exchange unavailable")

	errs, err := os.ReadFile(cfg.ErrorFilePath)
	suite.Require().NoError(err)
	suite.NotContains(string(errs), "simulation started")
	suite.Contains(string(errs), "exchange unavailable")
}

func (suite *LoggerTestSuite) TestNewLoggerWithConfigInvalidLevel() {
	_, err := NewLoggerWithConfig(config.LogConfig{Level: "loud"})
	suite.Error(err)
}

func (suite *LoggerTestSuite) TestParseLevel() {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{input: "", expected: zapcore.InfoLevel},
		{input: "DEBUG", expected: zapcore.DebugLevel},
		{input: "warning", expected: zapcore.WarnLevel},
		{input: "error", expected: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		suite.Run(tt.input, func() {
			level, err := ParseLevel(tt.input)
			suite.NoError(err)
			suite.Equal(tt.expected, level)
		})
	}
}

func (suite *LoggerTestSuite) TestTradingChild() {
	logger, err := NewLogger()
	suite.Require().NoError(err)

	trading := logger.Trading()
	suite.NotNil(trading.Logger)
	suite.NotSame(logger, trading)

	empty := &Logger{}
	suite.Same(empty, empty.Trading())
}

func (suite *LoggerTestSuite) TestNewNopLogger() {
	logger := NewNopLogger()
	suite.NotNil(logger.Logger)
	suite.NotPanics(func() {
		logger.Trading().Info("discarded")
	})
	suite.NoError(logger.Sync())
}
