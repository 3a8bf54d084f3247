package display

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MockWindow records presented frames and replays scripted key presses.
type MockWindow struct {
	opts   Options
	keys   map[int]int
	polls  int
	shown  []image.Point
	closes int
	mu     sync.Mutex
}

// NewMockWindow creates a MockWindow with no scripted keys.
func NewMockWindow() *MockWindow {
	return &MockWindow{keys: make(map[int]int)}
}

// PressAt makes the poll-th WaitKey call (1-based) return key.
func (w *MockWindow) PressAt(poll, key int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys[poll] = key
}

// Opener returns an OpenFunc that hands out this window and remembers the
// options it was opened with.
func (w *MockWindow) Opener() OpenFunc {
	return func(opts Options) (Window, error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.opts = opts
		return w, nil
	}
}

func (w *MockWindow) Show(img gocv.Mat) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closes > 0 {
		return ErrWindowClosed
	}
	w.shown = append(w.shown, image.Pt(img.Cols(), img.Rows()))
	return nil
}

func (w *MockWindow) WaitKey(delay int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.polls++
	if key, ok := w.keys[w.polls]; ok {
		return key
	}
	return -1
}

func (w *MockWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closes++
	return nil
}

// Options returns what the window was opened with.
func (w *MockWindow) Options() Options {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// Shown returns the size of every presented frame, in order.
func (w *MockWindow) Shown() []image.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]image.Point(nil), w.shown...)
}

// Polls returns how many times WaitKey was called.
func (w *MockWindow) Polls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polls
}

// Closes returns how many times Close was called.
func (w *MockWindow) Closes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closes
}

// FailingOpener returns an OpenFunc that always fails with err.
func FailingOpener(err error) OpenFunc {
	return func(Options) (Window, error) { return nil, err }
}
