package stats

import (
	"log/slog"
	"runtime"
	"time"
)

const (
	// ReportInterval: stats are logged every N presented frames to keep allocations out of the loop.
	ReportInterval = 60
	averageWindow  = 64
)

// Frames tracks presented-frame timing and reports it through the logger.
// Both reports are off by default.
type Frames struct {
	ShowFPS      bool
	ShowMemAlloc bool

	FrameCount uint64
	Average    time.Duration
	Max        time.Duration
	// Delta is the duration of the most recent frame.
	Delta time.Duration

	log      *slog.Logger
	memStats runtime.MemStats
}

// New returns frame stats reporting to log. A nil log discards reports.
func New(log *slog.Logger) *Frames {
	return &Frames{log: log}
}

// Record adds one presented frame that took d. Returns true when a report was logged.
func (f *Frames) Record(d time.Duration) bool {
	f.Delta = d
	f.Max = max(f.Max, d)
	if f.FrameCount < averageWindow/2 {
		f.Average = d
	} else {
		f.Average = ((averageWindow-1)*f.Average + d) / averageWindow
	}
	f.FrameCount++

	if f.FrameCount%ReportInterval != 0 {
		return false
	}
	return f.report()
}

// FPS returns frames per second from the rolling average, or 0 before the first frame.
func (f *Frames) FPS() float64 {
	if f.Average <= 0 {
		return 0
	}
	return 1.0 / f.Average.Seconds()
}

func (f *Frames) report() bool {
	if f.log == nil || (!f.ShowFPS && !f.ShowMemAlloc) {
		return false
	}
	attrs := []any{slog.Uint64("frames", f.FrameCount)}
	if f.ShowFPS {
		attrs = append(attrs,
			slog.Float64("fps", f.FPS()),
			slog.Duration("avg", f.Average),
			slog.Duration("max", f.Max),
		)
	}
	if f.ShowMemAlloc {
		runtime.ReadMemStats(&f.memStats)
		attrs = append(attrs, slog.Float64("heap_mib", float64(f.memStats.Alloc)/(1024*1024)))
	}
	f.log.Info("Frame stats", attrs...)
	return true
}
