package overlay

import (
	"image"
	"image/color"
	"math"

	"github.com/ayusman/landmarkcam/internal/detector"
	"gocv.io/x/gocv"
)

// visibilityThreshold hides pose landmarks the detector is unsure about.
const visibilityThreshold = 0.5

// Drawn counts what a draw call burned into the image.
type Drawn struct {
	Points int
	Edges  int
}

// Add sums two counts.
func (d Drawn) Add(o Drawn) Drawn {
	return Drawn{Points: d.Points + o.Points, Edges: d.Edges + o.Edges}
}

// toPixel maps a normalized landmark to image coordinates. Landmarks outside
// the unit square are not drawable.
func toPixel(l detector.Landmark, width, height int) (image.Point, bool) {
	if l.X < 0 || l.X > 1 || l.Y < 0 || l.Y > 1 {
		return image.Point{}, false
	}
	x := int(math.Floor(l.X * float64(width)))
	y := int(math.Floor(l.Y * float64(height)))
	return image.Pt(min(x, width-1), min(y, height-1)), true
}

// DrawLandmarks draws one landmark set and its connections onto img in place.
// Connections are drawn first, then points. A connection is drawn only when
// both of its endpoints are drawable.
func DrawLandmarks(img *gocv.Mat, set detector.LandmarkSet, connections []detector.Connection, style Style) Drawn {
	var drawn Drawn
	if img == nil || img.Empty() || set.Len() == 0 {
		return drawn
	}

	width, height := img.Cols(), img.Rows()
	pixels := make(map[int]image.Point, set.Len())
	for i, l := range set.Landmarks {
		if set.HasVisibility && l.Visibility < visibilityThreshold {
			continue
		}
		if pt, ok := toPixel(l, width, height); ok {
			pixels[i] = pt
		}
	}

	if style.Connection != nil {
		for _, c := range connections {
			from, okFrom := pixels[c.From]
			to, okTo := pixels[c.To]
			if !okFrom || !okTo {
				continue
			}
			spec := style.Connection(c)
			gocv.Line(img, from, to, spec.Color, spec.Thickness)
			drawn.Edges++
		}
	}

	if style.Landmark != nil {
		for i := range set.Landmarks {
			pt, ok := pixels[i]
			if !ok {
				continue
			}
			spec, draw := style.Landmark(i)
			if !draw {
				continue
			}
			border := max(spec.CircleRadius+1, int(float64(spec.CircleRadius)*1.2))
			gocv.Circle(img, pt, border, white, spec.Thickness)
			gocv.Circle(img, pt, spec.CircleRadius, spec.Color, spec.Thickness)
			drawn.Points++
		}
	}

	return drawn
}

// Renderer draws every detector's results with its default style.
type Renderer struct {
	styles map[detector.Kind]Style
}

// NewRenderer creates a Renderer with the default per-detector styles.
func NewRenderer() *Renderer {
	styles := make(map[detector.Kind]Style, len(detector.Kinds))
	for _, k := range detector.Kinds {
		styles[k] = DefaultStyle(k)
	}
	return &Renderer{styles: styles}
}

// Draw burns all results into img, pose then face then hands. A detector
// with no results draws nothing. topology resolves each detector's
// connections; nil means the built-in topologies.
// It returns, per detector, how many landmark sets left at least one point
// or edge on img.
func (r *Renderer) Draw(img *gocv.Mat, results detector.Results, topology func(detector.Kind) []detector.Connection) map[detector.Kind]int {
	if topology == nil {
		topology = detector.Connections
	}

	counts := make(map[detector.Kind]int, len(detector.Kinds))
	for _, k := range detector.Kinds {
		sets := results.ByKind(k)
		if len(sets) == 0 {
			continue
		}
		conns := topology(k)
		for _, set := range sets {
			if d := DrawLandmarks(img, set, conns, r.styles[k]); d.Points > 0 || d.Edges > 0 {
				counts[k]++
			}
		}
	}
	return counts
}

// HUD text and layout.
const (
	HintText = "Press L to toggle, Q to quit"

	hudMargin       = 10
	statusBaseline  = 30
	hintFromBottom  = 20
	statusFontScale = 0.8
	hintFontScale   = 0.6
	hudThickness    = 2
)

var (
	statusColor = color.RGBA{G: 255, A: 255}
	hintColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// HUDText returns the status line for the overlay flag.
func HUDText(showing bool) string {
	if showing {
		return "Landmarks: ON"
	}
	return "Landmarks: OFF"
}

// DrawHUD writes the status line top-left and the control hint bottom-left.
func DrawHUD(img *gocv.Mat, showing bool) {
	if img == nil || img.Empty() {
		return
	}

	gocv.PutTextWithParams(img, HUDText(showing), image.Pt(hudMargin, statusBaseline),
		gocv.FontHersheySimplex, statusFontScale, statusColor, hudThickness, gocv.LineAA, false)
	gocv.PutTextWithParams(img, HintText, image.Pt(hudMargin, img.Rows()-hintFromBottom),
		gocv.FontHersheySimplex, hintFontScale, hintColor, hudThickness, gocv.LineAA, false)
}

// HUDRegions returns the bands of img the HUD may touch.
func HUDRegions(width, height int) []image.Rectangle {
	return []image.Rectangle{
		image.Rect(0, 0, width, statusBaseline+hudMargin),
		image.Rect(0, height-hintFromBottom-2*hudMargin-hudThickness, width, height-hintFromBottom+hudMargin),
	}
}
