package capture

import (
	"image"

	"gocv.io/x/gocv"
)

// flipAroundYAxis is OpenCV's flip code for a horizontal mirror.
const flipAroundYAxis = 1

// Mirror returns a copy of src flipped about the vertical axis, so the
// display behaves like a mirror. Mirror(Mirror(m)) equals m pixel for pixel.
// The caller owns the returned Mat.
func Mirror(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Flip(src, &dst, flipAroundYAxis)
	return dst
}

// ToRGB converts a BGR frame to the RGB layout the detectors consume.
// Single channel frames are expanded to three channels.
func ToRGB(src gocv.Mat) gocv.Mat {
	dst := gocv.NewMat()
	switch src.Channels() {
	case 1:
		gocv.CvtColor(src, &dst, gocv.ColorGrayToRGB)
	case 4:
		gocv.CvtColor(src, &dst, gocv.ColorBGRAToRGB)
	default:
		gocv.CvtColor(src, &dst, gocv.ColorBGRToRGB)
	}
	return dst
}

// Resize scales src to exactly width x height, whatever its native size.
func Resize(src gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	gocv.Resize(src, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return dst
}
