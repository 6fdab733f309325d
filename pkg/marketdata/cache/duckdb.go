package cache

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/trading-simulator/internal/logger"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
)

const schema = `
	CREATE TABLE IF NOT EXISTS candles (
		exchange TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		time TIMESTAMP NOT NULL,
		open DOUBLE,
		high DOUBLE,
		low DOUBLE,
		close DOUBLE,
		volume DOUBLE,
		PRIMARY KEY (exchange, symbol, timeframe, time)
	);
	CREATE TABLE IF NOT EXISTS coverage (
		exchange TEXT NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL
	);
`

// Key identifies one candle series.
type Key struct {
	Exchange  string
	Symbol    string
	Timeframe types.Timeframe
}

// Window is a stored time range of a series.
type Window struct {
	Start time.Time
	End   time.Time
}

// CandleCache stores downloaded candles together with the time ranges they cover.
type CandleCache interface {
	// Get returns the cached candles of [start, end] and whether the range is fully covered.
	Get(ctx context.Context, key Key, start, end time.Time) ([]types.MarketData, bool, error)
	// Put stores candles and records that [start, end] is covered.
	Put(ctx context.Context, key Key, start, end time.Time, data []types.MarketData) error
	// Coverage lists the covered ranges of a series ordered by start.
	Coverage(ctx context.Context, key Key) ([]Window, error)
	Close() error
}

// DuckDBCache is a CandleCache backed by a DuckDB database file.
type DuckDBCache struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBCache opens the database at path and creates the tables.
// An empty path or ":memory:" keeps the cache in memory.
func NewDuckDBCache(path string, log *logger.Logger) (*DuckDBCache, error) {
	if path == ":memory:" {
		path = ""
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	// a single connection keeps an in-memory database shared across queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create cache tables", err)
	}

	return &DuckDBCache{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func (c *DuckDBCache) keyFilter(key Key) squirrel.Eq {
	return squirrel.Eq{
		"exchange":  key.Exchange,
		"symbol":    key.Symbol,
		"timeframe": string(key.Timeframe),
	}
}

// Get implements CandleCache.
func (c *DuckDBCache) Get(ctx context.Context, key Key, start, end time.Time) ([]types.MarketData, bool, error) {
	query, args, err := c.sq.
		Select("COUNT(*)").
		From("coverage").
		Where(squirrel.And{
			c.keyFilter(key),
			squirrel.LtOrEq{"start_time": start.UTC()},
			squirrel.GtOrEq{"end_time": end.UTC()},
		}).
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage query", err)
	}

	var covering int
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&covering); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query coverage", err)
	}

	if covering == 0 {
		return nil, false, nil
	}

	query, args, err = c.sq.
		Select("time", "open", "high", "low", "close", "volume").
		From("candles").
		Where(squirrel.And{
			c.keyFilter(key),
			squirrel.GtOrEq{"time": start.UTC()},
			squirrel.LtOrEq{"time": end.UTC()},
		}).
		OrderBy("time").
		ToSql()
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build candle query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query candles", err)
	}
	defer rows.Close()

	result := []types.MarketData{}

	for rows.Next() {
		var (
			timestamp                           time.Time
			open, high, low, closePrice, volume float64
		)

		if err := rows.Scan(&timestamp, &open, &high, &low, &closePrice, &volume); err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan candle", err)
		}

		result = append(result, types.MarketData{
			Symbol: key.Symbol,
			Time:   timestamp.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating candles", err)
	}

	c.logger.Debug("candle cache hit",
		zap.String("exchange", key.Exchange),
		zap.String("symbol", key.Symbol),
		zap.String("timeframe", string(key.Timeframe)),
		zap.Int("candles", len(result)))

	return result, true, nil
}

// Put implements CandleCache.
// Candles are upserted and the new range is merged with every stored range it overlaps.
func (c *DuckDBCache) Put(ctx context.Context, key Key, start, end time.Time, data []types.MarketData) (err error) {
	if !start.Before(end) {
		return errors.New(errors.ErrCodeInvalidDateRange, "start must be before end")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (exchange, symbol, timeframe, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}
	defer stmt.Close()

	for _, d := range data {
		if _, err = stmt.ExecContext(ctx, key.Exchange, key.Symbol, string(key.Timeframe), d.Time.UTC(),
			d.Open, d.High, d.Low, d.Close, d.Volume); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write candle", err)
		}
	}

	merged, err := c.mergeCoverage(ctx, tx, key, Window{Start: start.UTC(), End: end.UTC()})
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit candles", err)
	}

	c.logger.Debug("candle cache stored",
		zap.String("exchange", key.Exchange),
		zap.String("symbol", key.Symbol),
		zap.String("timeframe", string(key.Timeframe)),
		zap.Int("candles", len(data)),
		zap.Time("coverage_start", merged.Start),
		zap.Time("coverage_end", merged.End))

	return nil
}

// mergeCoverage replaces the ranges overlapping w with their union.
func (c *DuckDBCache) mergeCoverage(ctx context.Context, tx *sql.Tx, key Key, w Window) (Window, error) {
	overlapping := squirrel.And{
		c.keyFilter(key),
		squirrel.LtOrEq{"start_time": w.End},
		squirrel.GtOrEq{"end_time": w.Start},
	}

	query, args, err := c.sq.
		Select("MIN(start_time)", "MAX(end_time)").
		From("coverage").
		Where(overlapping).
		ToSql()
	if err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage query", err)
	}

	var minStart, maxEnd sql.NullTime
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&minStart, &maxEnd); err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query coverage", err)
	}

	if minStart.Valid && minStart.Time.Before(w.Start) {
		w.Start = minStart.Time.UTC()
	}

	if maxEnd.Valid && maxEnd.Time.After(w.End) {
		w.End = maxEnd.Time.UTC()
	}

	query, args, err = c.sq.Delete("coverage").Where(overlapping).ToSql()
	if err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage delete", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to delete coverage", err)
	}

	query, args, err = c.sq.
		Insert("coverage").
		Columns("exchange", "symbol", "timeframe", "start_time", "end_time").
		Values(key.Exchange, key.Symbol, string(key.Timeframe), w.Start, w.End).
		ToSql()
	if err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage insert", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return Window{}, errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert coverage", err)
	}

	return w, nil
}

// Coverage implements CandleCache.
func (c *DuckDBCache) Coverage(ctx context.Context, key Key) ([]Window, error) {
	query, args, err := c.sq.
		Select("start_time", "end_time").
		From("coverage").
		Where(c.keyFilter(key)).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build coverage query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query coverage", err)
	}
	defer rows.Close()

	var windows []Window

	for rows.Next() {
		var w Window
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan coverage", err)
		}

		w.Start = w.Start.UTC()
		w.End = w.End.UTC()
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating coverage", err)
	}

	return windows, nil
}

// Close closes the database.
func (c *DuckDBCache) Close() error {
	return c.db.Close()
}
