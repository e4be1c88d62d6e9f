package frameloop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iof-app/internal/clock"
	"iof-app/internal/stats"
	"iof-app/internal/window"
)

func newTestLoop(t *testing.T, pacing Pacing) (*Loop, *window.Headless, *clock.Manual, *bytes.Buffer) {
	t.Helper()
	surface := window.NewHeadless(200, 400)
	clk := clock.NewManual()
	var out bytes.Buffer
	l, err := New(surface, clk, Options{TargetFPS: 60, Pacing: pacing, Deltas: &out})
	require.NoError(t, err)
	return l, surface, clk, &out
}

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestFrameInterval(t *testing.T) {
	assert.Equal(t, 16*time.Millisecond, FrameInterval(60))
	assert.Equal(t, 33*time.Millisecond, FrameInterval(30))
	assert.Equal(t, time.Millisecond, FrameInterval(1000))
}

func TestNewRejectsBadOptions(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	clk := clock.NewManual()

	_, err := New(surface, clk, Options{TargetFPS: 0})
	assert.Error(t, err)
	_, err = New(surface, clk, Options{TargetFPS: 1001})
	assert.Error(t, err)
	_, err = New(nil, clk, Options{TargetFPS: 60})
	assert.Error(t, err)
	_, err = New(surface, nil, Options{TargetFPS: 60})
	assert.Error(t, err)
}

func TestCloseTerminatesWithinOneIteration(t *testing.T) {
	l, surface, _, out := newTestLoop(t, PaceSleep)
	surface.Push(window.Event{Type: window.EventKeyPressed, Key: 32}, window.Closed())

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, uint64(1), l.Iterations())
	assert.Len(t, lines(out), 1, "the closing iteration still emits its delta")
	assert.Equal(t, 0, surface.Presents())
	assert.True(t, surface.Destroyed())
}

func TestNonCloseEventsAreIgnored(t *testing.T) {
	l, surface, _, _ := newTestLoop(t, PaceBusy)
	surface.Push(
		window.Event{Type: window.EventKeyPressed, Key: 256},
		window.Event{Type: window.EventResized, Width: 640, Height: 480},
		window.Event{Type: window.EventFocusLost},
		window.Event{Type: window.EventUnknown},
	)

	presented, err := l.Step()
	require.NoError(t, err)

	assert.False(t, presented)
	assert.True(t, surface.IsOpen())
	assert.Equal(t, 0, surface.Pending())
	n, _ := surface.Clears()
	assert.Equal(t, 0, n)
}

func TestOneDeltaPerIteration(t *testing.T) {
	l, _, clk, out := newTestLoop(t, PaceBusy)

	clk.Advance(5 * time.Millisecond)
	_, err := l.Step()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, l.LastTimestamp())

	clk.Advance(3 * time.Millisecond)
	_, err = l.Step()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, l.LastTimestamp())
	assert.LessOrEqual(t, l.LastTimestamp(), clk.Elapsed())

	_, err = l.Step()
	require.NoError(t, err)

	assert.Equal(t, []string{"0.005", "0.003", "0"}, lines(out))
	assert.Equal(t, uint64(3), l.Iterations())
}

func TestPresentOnlyAfterInterval(t *testing.T) {
	l, surface, clk, _ := newTestLoop(t, PaceBusy)

	clk.Advance(16 * time.Millisecond)
	presented, err := l.Step()
	require.NoError(t, err)
	assert.False(t, presented, "16ms does not exceed the 16ms interval")

	clk.Advance(time.Millisecond)
	presented, err = l.Step()
	require.NoError(t, err)
	require.True(t, presented)

	assert.Equal(t, time.Duration(0), l.LastTimestamp())
	assert.Equal(t, time.Duration(0), clk.Elapsed())
	assert.Equal(t, 1, surface.Presents())
	n, c := surface.Clears()
	assert.Equal(t, 1, n)
	assert.Equal(t, ClearColor, c)
	assert.Equal(t, uint8(0xff), c.A)

	presented, err = l.Step()
	require.NoError(t, err)
	assert.False(t, presented)
}

func TestBusyPacingNeverSleeps(t *testing.T) {
	l, surface, clk, _ := newTestLoop(t, PaceBusy)
	for i := 0; i < 100; i++ {
		_, err := l.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, time.Duration(0), clk.Slept())
	assert.Equal(t, 0, surface.Presents())
	assert.Equal(t, uint64(100), l.Iterations())
	assert.True(t, surface.IsOpen(), "the loop never closes the surface on its own")
}

func TestZeroPacingIsBusy(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	clk := clock.NewManual()
	l, err := New(surface, clk, Options{TargetFPS: 60})
	require.NoError(t, err)

	clk.Advance(time.Millisecond)
	presented, err := l.Step()
	require.NoError(t, err)
	assert.False(t, presented)
	assert.Equal(t, time.Duration(0), clk.Slept())
}

func TestSleepPacingWaitsForFrameBoundary(t *testing.T) {
	l, surface, clk, _ := newTestLoop(t, PaceSleep)

	clk.Advance(4*time.Millisecond + 300*time.Microsecond)
	presented, err := l.Step()
	require.NoError(t, err)
	assert.False(t, presented)
	assert.Equal(t, 13*time.Millisecond, clk.Slept())
	assert.Equal(t, int64(17), clk.Elapsed().Milliseconds())

	presented, err = l.Step()
	require.NoError(t, err)
	assert.True(t, presented)
	assert.Equal(t, 1, surface.Presents())
}

func TestRunStaysOpenWithoutEvents(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	clk := clock.NewManual()
	var out bytes.Buffer
	l, err := New(surface, clk, Options{TargetFPS: 60, Pacing: PaceSleep, MaxFrames: 3, Deltas: &out})
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, uint64(3), l.Frames())
	assert.Equal(t, 3, surface.Presents())
	assert.Equal(t, uint64(6), l.Iterations())
	assert.Equal(t, []string{"0", "0.017", "0", "0.017", "0", "0.017"}, lines(&out))
	assert.True(t, surface.Destroyed())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	l, surface, _, out := newTestLoop(t, PaceSleep)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, l.Run(ctx))
	assert.Equal(t, uint64(1), l.Iterations())
	assert.Len(t, lines(out), 1)
	assert.True(t, surface.Destroyed())
}

func TestRunRecordsStats(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	frames := stats.New(nil)
	l, err := New(surface, clock.NewManual(), Options{TargetFPS: 60, Pacing: PaceSleep, MaxFrames: 2, Stats: frames})
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, uint64(2), frames.FrameCount)
	assert.Equal(t, 17*time.Millisecond, frames.Delta)
}

func TestBufferedDeltasFlushOnPresent(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	clk := clock.NewManual()
	var out bytes.Buffer
	w := bufio.NewWriter(&out)
	l, err := New(surface, clk, Options{TargetFPS: 60, Pacing: PaceBusy, Deltas: w})
	require.NoError(t, err)

	_, err = l.Step()
	require.NoError(t, err)
	assert.Empty(t, out.String())

	clk.Advance(20 * time.Millisecond)
	_, err = l.Step()
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0.02"}, lines(&out))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestDeltaWriteErrorStopsRun(t *testing.T) {
	surface := window.NewHeadless(200, 400)
	l, err := New(surface, clock.NewManual(), Options{TargetFPS: 60, Deltas: failingWriter{}})
	require.NoError(t, err)

	err = l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write delta")
	assert.True(t, surface.Destroyed())
}

type brokenDisplay struct {
	*window.Headless
}

func (brokenDisplay) Display() error { return window.ErrDestroyed }

func TestDisplayErrorIsReturned(t *testing.T) {
	surface := brokenDisplay{window.NewHeadless(200, 400)}
	clk := clock.NewManual()
	l, err := New(surface, clk, Options{TargetFPS: 60, Pacing: PaceBusy})
	require.NoError(t, err)

	clk.Advance(17 * time.Millisecond)
	_, err = l.Step()
	assert.ErrorIs(t, err, window.ErrDestroyed)
	assert.Equal(t, uint64(0), l.Frames())
}

func TestParsePacing(t *testing.T) {
	p, err := ParsePacing("sleep")
	require.NoError(t, err)
	assert.Equal(t, PaceSleep, p)

	p, err = ParsePacing("busy")
	require.NoError(t, err)
	assert.Equal(t, PaceBusy, p)

	p, err = ParsePacing("")
	require.NoError(t, err)
	assert.Equal(t, PaceBusy, p)

	_, err = ParsePacing("spin")
	assert.Error(t, err)
}
