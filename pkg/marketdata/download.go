package marketdata

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

// DownloadParams holds the parameters for a candle download into the cache.
type DownloadParams struct {
	Exchange  string          `validate:"required"`
	Symbol    string          `validate:"required"`
	Timeframe types.Timeframe `validate:"required"`
	StartDate time.Time       `validate:"required"`
	EndDate   time.Time       `validate:"required,gtfield=StartDate"`
	// ChunkSize is the number of candles requested per provider call.
	ChunkSize int `validate:"gte=0"`
}

// OnDownloadProgress is called after each chunk with the downloaded and total candle counts.
type OnDownloadProgress = func(current float64, total float64, message string)

const defaultDownloadChunk = 1000

// Validate validates the download parameters.
func (p DownloadParams) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if p.Timeframe.Duration() <= 0 {
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timeframe: %s", p.Timeframe)
	}

	return nil
}

// chunks splits the download window into provider requests of at most ChunkSize candles.
func (p DownloadParams) chunks() []Window {
	size := p.ChunkSize
	if size <= 0 {
		size = defaultDownloadChunk
	}

	step := p.Timeframe.Duration() * time.Duration(size)

	var windows []Window

	for start := p.StartDate; start.Before(p.EndDate); start = start.Add(step) {
		end := start.Add(step)
		if end.After(p.EndDate) {
			end = p.EndDate
		}

		windows = append(windows, Window{Start: start, End: end})
	}

	return windows
}

// Window is a time range of candles.
type Window struct {
	Start time.Time
	End   time.Time
}
