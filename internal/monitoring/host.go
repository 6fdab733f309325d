package monitoring

import (
	"os"
	"runtime"

	"github.com/prometheus/procfs"
	"github.com/rxtech-lab/trading-simulator/internal/types"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"golang.org/x/sys/unix"
)

// HostStats reads resource usage of the machine and the current process.
type HostStats interface {
	Memory() (types.MemoryInfo, error)
	Disk(path string) (types.DiskInfo, error)
	CPU() (types.CPUInfo, error)
	Process() (types.ProcessInfo, error)
}

// ProcHost reads host statistics from /proc and statfs.
type ProcHost struct {
	fs procfs.FS
}

// NewProcHost opens the default proc filesystem. It fails where /proc is not mounted.
func NewProcHost() (*ProcHost, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open proc filesystem", err)
	}

	return &ProcHost{fs: fs}, nil
}

// Memory implements HostStats.
func (h *ProcHost) Memory() (types.MemoryInfo, error) {
	meminfo, err := h.fs.Meminfo()
	if err != nil {
		return types.MemoryInfo{}, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to read meminfo", err)
	}

	if meminfo.MemTotal == nil || meminfo.MemAvailable == nil {
		return types.MemoryInfo{}, errors.New(errors.ErrCodeDataSourceUnavailable, "meminfo has no MemTotal or MemAvailable")
	}

	// meminfo reports kibibytes
	total := *meminfo.MemTotal * 1024
	available := *meminfo.MemAvailable * 1024

	return types.MemoryInfo{
		TotalBytes:     total,
		AvailableBytes: available,
		UsedPercent:    usedPercent(total, available),
	}, nil
}

// Disk implements HostStats.
func (h *ProcHost) Disk(path string) (types.DiskInfo, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return types.DiskInfo{}, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to stat filesystem at %s", path)
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	free := stat.Bavail * blockSize

	return types.DiskInfo{
		Path:        path,
		TotalBytes:  total,
		FreeBytes:   free,
		UsedPercent: usedPercent(total, free),
	}, nil
}

// CPU implements HostStats.
func (h *ProcHost) CPU() (types.CPUInfo, error) {
	info := types.CPUInfo{Count: runtime.NumCPU()}

	load, err := h.fs.LoadAvg()
	if err != nil {
		return info, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to read load average", err)
	}

	info.Load1 = load.Load1
	info.Load5 = load.Load5
	info.Load15 = load.Load15

	if proc, err := h.fs.Self(); err == nil {
		if stat, err := proc.Stat(); err == nil {
			info.Seconds = stat.CPUTime()
		}
	}

	return info, nil
}

// Process implements HostStats.
func (h *ProcHost) Process() (types.ProcessInfo, error) {
	info := goProcessInfo()

	proc, err := h.fs.Self()
	if err != nil {
		return info, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open own process", err)
	}

	stat, err := proc.Stat()
	if err != nil {
		return info, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to read process stat", err)
	}

	info.ResidentBytes = uint64(stat.ResidentMemory())

	return info, nil
}

func goProcessInfo() types.ProcessInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return types.ProcessInfo{
		PID:        os.Getpid(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		GCCount:    mem.NumGC,
		GoVersion:  runtime.Version(),
	}
}

func usedPercent(total, free uint64) float64 {
	if total == 0 {
		return 0
	}

	return float64(total-free) / float64(total) * 100
}
