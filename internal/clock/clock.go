package clock

import (
	"sync"
	"time"
)

// Clock is a restartable monotonic time source. Elapsed reports the time since the clock
// was created or last restarted.
type Clock interface {
	Elapsed() time.Duration
	// Restart resets elapsed time to zero and returns the time elapsed before the reset.
	Restart() time.Duration
	// Sleep blocks for d. Manual clocks advance instead of blocking.
	Sleep(d time.Duration)
}

// Monotonic is the real Clock. time.Now carries a monotonic reading, so wall clock
// changes do not affect it.
type Monotonic struct {
	start time.Time
}

// NewMonotonic returns a clock started now.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Elapsed() time.Duration {
	return time.Since(m.start)
}

func (m *Monotonic) Restart() time.Duration {
	now := time.Now()
	prev := now.Sub(m.start)
	m.start = now
	return prev
}

func (m *Monotonic) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Manual is a Clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
	slept   time.Duration
}

// NewManual returns a manual clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// Advance moves the clock forward by d. Negative values are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.elapsed += d
	m.mu.Unlock()
}

func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

func (m *Manual) Restart() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.elapsed
	m.elapsed = 0
	return prev
}

// Sleep advances the clock by d and records it in Slept.
func (m *Manual) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.elapsed += d
	m.slept += d
	m.mu.Unlock()
}

// Slept returns the total duration passed to Sleep.
func (m *Manual) Slept() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slept
}
