package frameloop

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/image/colornames"

	"iof-app/internal/clock"
	"iof-app/internal/stats"
	"iof-app/internal/window"
)

// Pacing selects what the loop does between frames.
type Pacing int

const (
	// PaceBusy polls again immediately, spinning until the frame interval has passed.
	PaceBusy Pacing = iota
	// PaceSleep sleeps until the next frame boundary.
	PaceSleep
)

func (p Pacing) String() string {
	switch p {
	case PaceBusy:
		return "busy"
	case PaceSleep:
		return "sleep"
	default:
		return "pacing(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePacing maps a config value to a Pacing. Empty means busy.
func ParsePacing(s string) (Pacing, error) {
	switch s {
	case "", "busy":
		return PaceBusy, nil
	case "sleep":
		return PaceSleep, nil
	}
	return 0, fmt.Errorf("unknown pacing %q", s)
}

// ClearColor is the fixed background every presented frame is cleared to.
var ClearColor color.RGBA = colornames.Black

// Options configure a Loop. TargetFPS must be in [1, 1000].
type Options struct {
	TargetFPS int
	Pacing    Pacing
	// MaxFrames closes the surface after that many presented frames. Zero runs until closed.
	MaxFrames uint64
	// Deltas receives one line per iteration. Nil discards.
	Deltas io.Writer
	Log    *slog.Logger
	Stats  *stats.Frames
}

// Loop owns a surface, a clock, and the last-frame timestamp.
type Loop struct {
	surface  window.Surface
	clock    clock.Clock
	opts     Options
	interval time.Duration
	last     time.Duration

	iterations uint64
	frames     uint64
	deltaBuf   []byte
}

// New returns a loop drawing to surface and timed by clk. The loop takes ownership of
// the surface: Run destroys it on exit.
func New(surface window.Surface, clk clock.Clock, opts Options) (*Loop, error) {
	if surface == nil {
		return nil, errors.New("frameloop: nil surface")
	}
	if clk == nil {
		return nil, errors.New("frameloop: nil clock")
	}
	if opts.TargetFPS < 1 || opts.TargetFPS > 1000 {
		return nil, fmt.Errorf("frameloop: target fps %d out of range [1, 1000]", opts.TargetFPS)
	}
	if opts.Deltas == nil {
		opts.Deltas = io.Discard
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		surface:  surface,
		clock:    clk,
		opts:     opts,
		interval: FrameInterval(opts.TargetFPS),
		deltaBuf: make([]byte, 0, 32),
	}, nil
}

// FrameInterval returns floor(1000/fps) milliseconds. A frame is presented once the
// clock's elapsed milliseconds exceed it.
func FrameInterval(fps int) time.Duration {
	return time.Duration(1000/fps) * time.Millisecond
}

// LastTimestamp returns the elapsed time recorded by the last iteration, zero right after a present.
func (l *Loop) LastTimestamp() time.Duration { return l.last }

// Iterations returns the number of completed Step calls.
func (l *Loop) Iterations() uint64 { return l.iterations }

// Frames returns the number of presented frames.
func (l *Loop) Frames() uint64 { return l.frames }

// Step runs one iteration: drain events, emit the delta, and present a cleared frame if
// the frame interval has passed. Returns true when a frame was presented.
func (l *Loop) Step() (presented bool, err error) {
	l.drainEvents()

	delta := l.clock.Elapsed() - l.last
	if err := l.emitDelta(delta); err != nil {
		return false, err
	}
	// Recorded every iteration, not only on present. The threshold below reads the clock, not last.
	l.last = l.clock.Elapsed()
	l.iterations++

	if !l.surface.IsOpen() {
		return false, nil
	}

	elapsed := l.clock.Elapsed()
	if elapsed.Milliseconds() > l.interval.Milliseconds() {
		l.last = 0
		l.clock.Restart()
		if err := l.present(elapsed); err != nil {
			return false, err
		}
		if l.opts.MaxFrames > 0 && l.frames >= l.opts.MaxFrames {
			l.opts.Log.Info("Frame limit reached", slog.Uint64("frames", l.frames))
			l.surface.Close()
		}
		return true, nil
	}

	if l.opts.Pacing == PaceSleep {
		// first whole millisecond past the interval
		wait := l.interval + time.Millisecond - elapsed.Truncate(time.Millisecond)
		l.clock.Sleep(wait)
	}
	return false, nil
}

// Run steps until the surface is closed or ctx is done, then destroys the surface.
func (l *Loop) Run(ctx context.Context) error {
	defer l.surface.Destroy()

	l.opts.Log.Info("Frame loop started",
		slog.Int("target_fps", l.opts.TargetFPS),
		slog.Duration("interval", l.interval),
		slog.String("pacing", l.opts.Pacing.String()),
	)

	for l.surface.IsOpen() {
		if _, err := l.Step(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			l.opts.Log.Info("Closing window", slog.String("reason", context.Cause(ctx).Error()))
			l.surface.Close()
		default:
		}
	}

	l.opts.Log.Info("Frame loop stopped",
		slog.Uint64("iterations", l.iterations),
		slog.Uint64("frames", l.frames),
	)
	return l.flush()
}

func (l *Loop) drainEvents() {
	for ev, ok := l.surface.PollEvent(); ok; ev, ok = l.surface.PollEvent() {
		switch ev.Type {
		case window.EventClosed:
			l.opts.Log.Info("Close requested")
			l.surface.Close()
		default:
			l.opts.Log.Debug("Ignoring event", slog.String("type", ev.Type.String()))
		}
	}
}

func (l *Loop) emitDelta(d time.Duration) error {
	l.deltaBuf = strconv.AppendFloat(l.deltaBuf[:0], float64(float32(d.Seconds())), 'g', 6, 32)
	l.deltaBuf = append(l.deltaBuf, '\n')
	if _, err := l.opts.Deltas.Write(l.deltaBuf); err != nil {
		return fmt.Errorf("write delta: %w", err)
	}
	return nil
}

func (l *Loop) present(frameTime time.Duration) error {
	l.surface.Clear(ClearColor)
	if err := l.surface.Display(); err != nil {
		return fmt.Errorf("display frame: %w", err)
	}
	l.frames++
	if l.opts.Stats != nil {
		l.opts.Stats.Record(frameTime)
	}
	return l.flush()
}

func (l *Loop) flush() error {
	if f, ok := l.opts.Deltas.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush deltas: %w", err)
		}
	}
	return nil
}
