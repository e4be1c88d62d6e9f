package graphics

import (
	"errors"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"iof-app/internal/window"
)

// Window is a raylib desktop window implementing window.Surface.
// raylib exposes input as state rather than a queue, so each drain collects the
// state changes since the previous one into pending events.
type Window struct {
	open      bool
	destroyed bool
	drawing   bool
	collected bool
	// framed is set when EndDrawing has polled input since the last drain.
	framed  bool
	focused bool
	pending []window.Event
}

// Open creates a fixed-size window. Only one raylib window can exist per process.
func Open(width, height int, title string) (*Window, error) {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(width), int32(height), title)
	if !rl.IsWindowReady() {
		return nil, errors.New("raylib: window not ready")
	}
	// ESC must not close the window; close via window button.
	rl.SetExitKey(rl.KeyNull)
	return &Window{open: true, focused: rl.IsWindowFocused()}, nil
}

func (w *Window) PollEvent() (window.Event, bool) {
	if !w.collected {
		w.collect()
		w.collected = true
	}
	if len(w.pending) == 0 {
		w.collected = false
		return window.Event{}, false
	}
	ev := w.pending[0]
	w.pending = w.pending[1:]
	return ev, true
}

func (w *Window) collect() {
	if w.destroyed {
		return
	}
	if w.pollNeeded() {
		rl.PollInputEvents()
	}
	if rl.WindowShouldClose() {
		w.pending = append(w.pending, window.Closed())
	}
	if rl.IsWindowResized() {
		w.pending = append(w.pending, window.Event{
			Type:   window.EventResized,
			Width:  int(rl.GetScreenWidth()),
			Height: int(rl.GetScreenHeight()),
		})
	}
	if focused := rl.IsWindowFocused(); focused != w.focused {
		w.focused = focused
		t := window.EventFocusLost
		if focused {
			t = window.EventFocusGained
		}
		w.pending = append(w.pending, window.Event{Type: t})
	}
	for k := rl.GetKeyPressed(); k != 0; k = rl.GetKeyPressed() {
		w.pending = append(w.pending, window.Event{Type: window.EventKeyPressed, Key: k})
	}
}

// pollNeeded reports whether input must be polled before collecting. EndDrawing
// already polls, and a second poll would reset the resize flag and key queue it filled.
func (w *Window) pollNeeded() bool {
	need := !w.framed
	w.framed = false
	return need
}

func (w *Window) IsOpen() bool {
	return w.open
}

func (w *Window) Close() {
	w.open = false
}

// Clear starts a frame if needed and clears the backbuffer to c.
func (w *Window) Clear(c color.RGBA) {
	if w.destroyed {
		return
	}
	if !w.drawing {
		rl.BeginDrawing()
		w.drawing = true
	}
	rl.ClearBackground(rl.NewColor(c.R, c.G, c.B, c.A))
}

// Display presents the backbuffer.
func (w *Window) Display() error {
	if w.destroyed {
		return window.ErrDestroyed
	}
	if !w.drawing {
		rl.BeginDrawing()
	}
	rl.EndDrawing()
	w.drawing = false
	w.framed = true
	return nil
}

func (w *Window) Destroy() {
	if w.destroyed {
		return
	}
	w.open = false
	w.destroyed = true
	w.pending = nil
	rl.CloseWindow()
}
