// Package overlay draws landmark sets and the HUD onto display frames.
package overlay

import (
	"image/color"

	"github.com/ayusman/landmarkcam/internal/detector"
)

// DrawingSpec describes how a landmark point or a connection is drawn.
type DrawingSpec struct {
	Color        color.RGBA
	Thickness    int
	CircleRadius int
}

// Style picks the spec for each landmark and connection of one detector.
type Style struct {
	// Landmark returns the spec for a landmark index, or false to draw no point.
	Landmark func(index int) (DrawingSpec, bool)

	// Connection returns the spec for an edge.
	Connection func(c detector.Connection) DrawingSpec
}

var (
	white     = color.RGBA{R: 224, G: 224, B: 224, A: 255}
	lightGray = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	red       = color.RGBA{R: 255, G: 48, B: 48, A: 255}
	orange    = color.RGBA{R: 255, G: 138, B: 0, A: 255}
	cyan      = color.RGBA{R: 0, G: 217, B: 231, A: 255}
	peach     = color.RGBA{R: 255, G: 204, B: 180, A: 255}
	purple    = color.RGBA{R: 128, G: 64, B: 128, A: 255}
	yellow    = color.RGBA{R: 255, G: 204, B: 0, A: 255}
	green     = color.RGBA{R: 48, G: 255, B: 48, A: 255}
	blue      = color.RGBA{R: 21, G: 101, B: 192, A: 255}
)

// DefaultConnectionSpec is the plain connection style.
var DefaultConnectionSpec = DrawingSpec{Color: white, Thickness: 2, CircleRadius: 2}

// DefaultStyle returns the style a detector kind is drawn with.
func DefaultStyle(k detector.Kind) Style {
	switch k {
	case detector.KindPose:
		return poseStyle()
	case detector.KindFace:
		return faceStyle()
	case detector.KindHands:
		return handStyle()
	default:
		return Style{
			Landmark:   func(int) (DrawingSpec, bool) { return DrawingSpec{Color: red, Thickness: 2, CircleRadius: 2}, true },
			Connection: func(detector.Connection) DrawingSpec { return DefaultConnectionSpec },
		}
	}
}

var poseLeft = map[int]bool{
	detector.LeftEyeInner: true, detector.LeftEye: true, detector.LeftEyeOuter: true,
	detector.LeftEar: true, detector.MouthLeft: true, detector.LeftShoulder: true,
	detector.LeftElbow: true, detector.LeftWrist: true, detector.LeftPinky: true,
	detector.LeftIndex: true, detector.LeftThumb: true, detector.LeftHip: true,
	detector.LeftKnee: true, detector.LeftAnkle: true, detector.LeftHeel: true,
	detector.LeftFootIndex: true,
}

// poseStyle colors the subject's left side orange and right side cyan.
func poseStyle() Style {
	return Style{
		Landmark: func(i int) (DrawingSpec, bool) {
			spec := DrawingSpec{Color: cyan, Thickness: 2, CircleRadius: 2}
			switch {
			case i == detector.Nose:
				spec.Color = white
			case poseLeft[i]:
				spec.Color = orange
			}
			return spec, true
		},
		Connection: func(detector.Connection) DrawingSpec { return DefaultConnectionSpec },
	}
}

// faceStyle draws the tessellation only.
func faceStyle() Style {
	return Style{
		Landmark: func(int) (DrawingSpec, bool) { return DrawingSpec{}, false },
		Connection: func(detector.Connection) DrawingSpec {
			return DrawingSpec{Color: lightGray, Thickness: 1, CircleRadius: 1}
		},
	}
}

// fingerOf maps a hand landmark to its finger: 0 palm/wrist, 1 thumb .. 5 pinky.
func fingerOf(i int) int {
	switch {
	case i == detector.Wrist:
		return 0
	case i <= detector.ThumbTip:
		return 1
	case i <= detector.IndexTip:
		return 2
	case i <= detector.MiddleTip:
		return 3
	case i <= detector.RingTip:
		return 4
	default:
		return 5
	}
}

var fingerColors = [6]color.RGBA{red, peach, purple, yellow, green, blue}

// handStyle colors every finger on its own; palm edges are white.
func handStyle() Style {
	return Style{
		Landmark: func(i int) (DrawingSpec, bool) {
			spec := DrawingSpec{Color: fingerColors[fingerOf(i)], Thickness: -1, CircleRadius: 5}
			if i == detector.Wrist || i == detector.ThumbCMC || i == detector.IndexMCP ||
				i == detector.MiddleMCP || i == detector.RingMCP || i == detector.PinkyMCP {
				spec.Color = red
			}
			return spec, true
		},
		Connection: func(c detector.Connection) DrawingSpec {
			from, to := fingerOf(c.From), fingerOf(c.To)
			if from != to {
				return DrawingSpec{Color: white, Thickness: 2}
			}
			return DrawingSpec{Color: fingerColors[from], Thickness: 2}
		},
	}
}
