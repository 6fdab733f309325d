package monitoring

import (
	"bufio"
	"os"
	"time"

	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
)

const (
	// MaxLogLines bounds the lines returned per file.
	MaxLogLines = 1000
	// DefaultLogLines is used when no line count is requested.
	DefaultLogLines = 50

	maxLogLineBytes = 1 << 20
)

// LogReader tails the application log files.
type LogReader struct {
	paths []string
	now   func() time.Time
}

// NewLogReader creates a reader over the given files. Empty paths are ignored.
func NewLogReader(paths ...string) *LogReader {
	r := &LogReader{now: time.Now}

	for _, p := range paths {
		if p != "" {
			r.paths = append(r.paths, p)
		}
	}

	return r
}

// ClampLines keeps a requested line count within 1..MaxLogLines. Zero selects the default.
func ClampLines(lines int) int {
	switch {
	case lines == 0:
		return DefaultLogLines
	case lines < 1:
		return 1
	case lines > MaxLogLines:
		return MaxLogLines
	default:
		return lines
	}
}

// RecentLogs returns the last lines of every log file. Missing files are skipped.
func (r *LogReader) RecentLogs(lines int) (types.RecentLogs, error) {
	lines = ClampLines(lines)
	result := types.RecentLogs{Logs: []types.LogEntry{}, Timestamp: r.now()}

	for _, path := range r.paths {
		entries, err := tail(path, lines)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return types.RecentLogs{}, err
		}

		result.Logs = append(result.Logs, entries...)
	}

	result.TotalCount = len(result.Logs)

	return result, nil
}

func tail(path string, lines int) ([]types.LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open log file %s", path)
	}
	defer file.Close()

	ring := make([]types.LogEntry, 0, lines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineBytes)

	number := 0
	for scanner.Scan() {
		number++
		entry := types.LogEntry{File: path, Line: number, Content: scanner.Text()}

		if len(ring) < lines {
			ring = append(ring, entry)
			continue
		}

		copy(ring, ring[1:])
		ring[len(ring)-1] = entry
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read log file %s", path)
	}

	return ring, nil
}
