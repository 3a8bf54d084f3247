// Package display shows frames in a desktop window and polls the keyboard.
package display

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrWindowClosed is returned when showing a frame in a closed window.
var ErrWindowClosed = errors.New("window is closed")

// Window presents frames and reports key presses.
type Window interface {
	// Show presents img until the next Show.
	Show(img gocv.Mat) error

	// WaitKey pumps window events for up to delay milliseconds and returns
	// the key pressed, or -1 if none was.
	WaitKey(delay int) int

	Close() error
}

// Options places and sizes the window.
type Options struct {
	Title  string
	Width  int
	Height int
	X      int
	Y      int
}

// OpenFunc creates a Window. The frame loop takes one so tests can swap in
// a MockWindow.
type OpenFunc func(Options) (Window, error)

// gocvWindow is a Window backed by an OpenCV HighGUI window.
type gocvWindow struct {
	win    *gocv.Window
	closed bool
}

// Open creates a resizable window, sized and positioned per opts.
func Open(opts Options) (Window, error) {
	if opts.Title == "" {
		return nil, errors.New("window title is required")
	}

	win := gocv.NewWindow(opts.Title)
	if opts.Width > 0 && opts.Height > 0 {
		win.ResizeWindow(opts.Width, opts.Height)
	}
	win.MoveWindow(opts.X, opts.Y)

	return &gocvWindow{win: win}, nil
}

func (w *gocvWindow) Show(img gocv.Mat) error {
	if w.closed {
		return ErrWindowClosed
	}
	w.win.IMShow(img)
	return nil
}

func (w *gocvWindow) WaitKey(delay int) int {
	if w.closed {
		return -1
	}
	return w.win.WaitKey(delay)
}

// Close destroys the window. Closing twice is a no-op.
func (w *gocvWindow) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.win.Close()
}
