package window

import (
	"image/color"
	"sync"
)

// Headless is an in-memory Surface. Events are fed with Push; clears and presents are
// counted instead of drawn.
type Headless struct {
	mu        sync.Mutex
	width     int
	height    int
	events    []Event
	open      bool
	destroyed bool
	clears    int
	lastClear color.RGBA
	presents  int
}

// NewHeadless returns an open headless surface of the given size.
func NewHeadless(width, height int) *Headless {
	return &Headless{width: width, height: height, open: true}
}

// Push queues events for the next PollEvent calls.
func (h *Headless) Push(events ...Event) {
	h.mu.Lock()
	h.events = append(h.events, events...)
	h.mu.Unlock()
}

func (h *Headless) PollEvent() (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return Event{}, false
	}
	ev := h.events[0]
	h.events = h.events[1:]
	if ev.Type == EventResized {
		h.width, h.height = ev.Width, ev.Height
	}
	return ev, true
}

func (h *Headless) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

func (h *Headless) Close() {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
}

func (h *Headless) Clear(c color.RGBA) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return
	}
	h.clears++
	h.lastClear = c
}

func (h *Headless) Display() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.destroyed {
		return ErrDestroyed
	}
	h.presents++
	return nil
}

func (h *Headless) Destroy() {
	h.mu.Lock()
	h.open = false
	h.destroyed = true
	h.events = nil
	h.mu.Unlock()
}

// Size returns the current surface size.
func (h *Headless) Size() (width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// Clears returns how many times Clear ran and the last color used.
func (h *Headless) Clears() (int, color.RGBA) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clears, h.lastClear
}

// Presents returns how many frames were displayed.
func (h *Headless) Presents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

// Pending returns the number of queued events.
func (h *Headless) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// Destroyed reports whether Destroy was called.
func (h *Headless) Destroyed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyed
}
