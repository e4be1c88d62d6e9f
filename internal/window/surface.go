package window

import (
	"errors"
	"image/color"
)

// ErrDestroyed is returned when drawing to a surface after Destroy.
var ErrDestroyed = errors.New("window: surface destroyed")

// Surface is a window with a drawable backbuffer.
//
// PollEvent is non-blocking: it returns the next pending event, or false once the
// queue is drained. Close only marks the surface as closed; Destroy releases it.
type Surface interface {
	PollEvent() (Event, bool)
	IsOpen() bool
	Close()
	Clear(c color.RGBA)
	Display() error
	Destroy()
}
