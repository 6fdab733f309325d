package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Market     MarketConfig     `yaml:"market"`
	Binance    BinanceConfig    `yaml:"binance"`
	Polygon    PolygonConfig    `yaml:"polygon"`
	Database   DatabaseConfig   `yaml:"database"`
	RabbitMQ   RabbitMQConfig   `yaml:"rabbitmq"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
}

type AppConfig struct {
	Name        string `yaml:"name" validate:"required"`
	Version     string `yaml:"version" validate:"required"`
	Debug       bool   `yaml:"debug"`
	Environment string `yaml:"environment"`
}

type ServerConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins        []string      `yaml:"cors_origins"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" validate:"gte=0"`
}

type LogConfig struct {
	Level         string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	FilePath      string `yaml:"file_path"`
	ErrorFilePath string `yaml:"error_file_path"`
	// Development switches to the human readable console encoder. It follows app.debug.
	Development bool `yaml:"-"`
}

type SimulationConfig struct {
	DefaultInitialBalance float64       `yaml:"default_initial_balance" validate:"gt=0"`
	DefaultDurationHours  float64       `yaml:"default_duration_hours" validate:"gt=0"`
	TickInterval          time.Duration `yaml:"tick_interval" validate:"gt=0"`
	MaxConcurrent         int           `yaml:"max_concurrent" validate:"gt=0"`
	TradeHistoryLimit     int           `yaml:"trade_history_limit" validate:"gt=0"`
	TradeHistoryKeep      int           `yaml:"trade_history_keep" validate:"gt=0,ltefield=TradeHistoryLimit"`
	// FallbackPrice is the start price used when no exchange answers.
	FallbackPrice        float64       `yaml:"fallback_price" validate:"gt=0"`
	WarmupCandles        int           `yaml:"warmup_candles" validate:"gte=0"`
	MaxConsecutiveErrors int           `yaml:"max_consecutive_errors" validate:"gt=0"`
	Retention            time.Duration `yaml:"retention"`
	CleanupSchedule      string        `yaml:"cleanup_schedule"`
	Broker               string        `yaml:"broker" validate:"required"`
	DecimalPrecision     int           `yaml:"decimal_precision" validate:"gte=0,lte=18"`
}

type MarketConfig struct {
	DefaultExchange string `yaml:"default_exchange" validate:"required"`
	// QuoteAliases maps a quote currency the exchange does not list to one it does, e.g. KRW to USDT.
	QuoteAliases           map[string]string `yaml:"quote_aliases"`
	PriceCacheTTL          time.Duration     `yaml:"price_cache_ttl"`
	AllowSyntheticFallback bool              `yaml:"allow_synthetic_fallback"`
	// CachePath is the DuckDB candle cache. Empty disables the cache.
	CachePath      string        `yaml:"cache_path"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
}

type PolygonConfig struct {
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	// URL is a postgres connection string. Empty selects the in-memory repository.
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns" validate:"gte=0"`
}

type RabbitMQConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
	BaseURL  string `yaml:"base_url"`
}

type MonitoringConfig struct {
	MemoryThreshold float64 `yaml:"memory_threshold" validate:"gt=0,lte=100"`
	DiskThreshold   float64 `yaml:"disk_threshold" validate:"gt=0,lte=100"`
	DiskPath        string  `yaml:"disk_path"`
	LogLines        int     `yaml:"log_lines" validate:"gte=0"`
}

type AnalysisConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Name:        "Trading Simulator",
			Version:     "1.0.0",
			Environment: "development",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8000,
			ReadTimeout:        15 * time.Second,
			WriteTimeout:       30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSOrigins:        []string{"*"},
			RateLimitPerMinute: 120,
		},
		Log: LogConfig{
			Level:         "info",
			FilePath:      "logs/app.log",
			ErrorFilePath: "logs/error.log",
		},
		Simulation: SimulationConfig{
			DefaultInitialBalance: 1000000,
			DefaultDurationHours:  24,
			TickInterval:          5 * time.Second,
			MaxConcurrent:         50,
			TradeHistoryLimit:     100,
			TradeHistoryKeep:      50,
			FallbackPrice:         50000000,
			WarmupCandles:         60,
			MaxConsecutiveErrors:  3,
			Retention:             24 * time.Hour,
			CleanupSchedule:       "@every 1h",
			Broker:                "binance",
			DecimalPrecision:      8,
		},
		Market: MarketConfig{
			DefaultExchange:        "binance",
			QuoteAliases:           map[string]string{"KRW": "USDT"},
			PriceCacheTTL:          10 * time.Second,
			AllowSyntheticFallback: true,
			CachePath:              "data/candles.duckdb",
			RequestTimeout:         10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange: "trading.events",
		},
		Telegram: TelegramConfig{
			BaseURL: "https://api.telegram.org",
		},
		Monitoring: MonitoringConfig{
			MemoryThreshold: 90,
			DiskThreshold:   90,
			DiskPath:        "/",
			LogLines:        50,
		},
		Analysis: AnalysisConfig{
			CacheTTL: 300 * time.Second,
		},
	}
}

// LoadFile parses a YAML file on top of the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}
	return cfg, nil
}

// Load builds the configuration from the defaults, an optional YAML file, the given
// .env files and the process environment, in that order. Missing .env files are ignored.
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		// godotenv never overrides variables already set in the process
		if err := godotenv.Load(file); err != nil {
			return cfg, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load env file %s", file)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv overrides the configuration from the process environment. Malformed numbers are errors.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("DEBUG")); v != "" {
		c.App.Debug = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		c.Log.FilePath = v
	}
	if v := os.Getenv("API_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "API_PORT must be an integer, got %q", v)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		balance, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "INITIAL_BALANCE must be a number, got %q", v)
		}
		c.Simulation.DefaultInitialBalance = balance
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Polygon.APIKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := strings.TrimSpace(os.Getenv("MARKET_DEFAULT_EXCHANGE")); v != "" {
		c.Market.DefaultExchange = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("MARKET_CACHE_PATH"); ok {
		c.Market.CachePath = v
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID != "" {
		c.Telegram.Enabled = true
	}
	c.Log.Development = c.App.Debug

	return nil
}

// Validate checks the configuration and returns an ErrCodeInvalidConfiguration error.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}
	return nil
}

// Addr is the host:port the API server listens on.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
