// Package testframes builds synthetic camera frames for tests.
package testframes

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Native camera size used by most fixtures.
const (
	FrameWidth  = 640
	FrameHeight = 480
)

// AsymmetricFrame returns a BGR frame whose left and right halves differ,
// so a horizontal flip is observable. The caller owns the Mat.
func AsymmetricFrame(width, height int) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(40, 40, 40, 0))

	// Red block top-left, blue bar along the right edge, gradient stripe.
	gocv.Rectangle(&mat, image.Rect(0, 0, width/4, height/3), color.RGBA{R: 255, A: 255}, -1)
	gocv.Rectangle(&mat, image.Rect(width-width/8, 0, width, height), color.RGBA{B: 255, A: 255}, -1)
	for x := 0; x < width; x += 8 {
		shade := uint8(x * 255 / width)
		gocv.Line(&mat, image.Pt(x, height/2), image.Pt(x, height/2+20), color.RGBA{G: shade, A: 255}, 2)
	}

	return &mat
}

// SolidFrame returns a frame filled with a single BGR color.
func SolidFrame(width, height int, b, g, r float64) *gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(b, g, r, 0))
	return &mat
}

// Sequence returns n entries sharing one asymmetric frame; indexes listed in
// unreadable become nil entries, which mock cameras turn into failed reads.
// Indexes are 1-based. Release with CloseAll.
func Sequence(n int, unreadable ...int) []*gocv.Mat {
	skip := make(map[int]bool, len(unreadable))
	for _, i := range unreadable {
		skip[i] = true
	}

	shared := AsymmetricFrame(FrameWidth, FrameHeight)
	frames := make([]*gocv.Mat, n)
	for i := 1; i <= n; i++ {
		if skip[i] {
			continue
		}
		frames[i-1] = shared
	}
	if len(skip) >= n {
		shared.Close()
	}
	return frames
}

// CloseAll releases every distinct non-nil frame once.
func CloseAll(frames []*gocv.Mat) {
	seen := make(map[*gocv.Mat]bool, len(frames))
	for _, f := range frames {
		if f == nil || seen[f] {
			continue
		}
		seen[f] = true
		f.Close()
	}
}
