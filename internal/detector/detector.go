package detector

import (
	"context"
	"fmt"

	"gocv.io/x/gocv"
)

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes an RGB frame and returns one LandmarkSet per detected
	// subject. Returns an empty slice if nothing is detected.
	Detect(ctx context.Context, img Image) ([]LandmarkSet, error)

	// Kind reports which landmarks the detector produces.
	Kind() Kind

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for one detector.
type Config struct {
	Kind Kind

	// MaxResults is the maximum number of subjects to report.
	MaxResults int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the configuration used for each detector kind.
func DefaultConfig(kind Kind) Config {
	cfg := Config{
		Kind:            kind,
		MaxResults:      1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
	if kind == KindHands {
		cfg.MaxResults = 2
	}
	return cfg
}

// Validate rejects out-of-range settings.
func (c Config) Validate() error {
	if c.Kind != KindPose && c.Kind != KindFace && c.Kind != KindHands {
		return fmt.Errorf("unknown detector kind %d", int(c.Kind))
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("%s: max results must be positive, got %d", c.Kind, c.MaxResults)
	}
	if c.Kind == KindPose && c.MaxResults != 1 {
		return fmt.Errorf("%s: tracks a single subject, got max results %d", c.Kind, c.MaxResults)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%s: detection confidence %.2f outside [0,1]", c.Kind, c.MinConfidence)
	}
	if c.MinTrackingConf < 0 || c.MinTrackingConf > 1 {
		return fmt.Errorf("%s: tracking confidence %.2f outside [0,1]", c.Kind, c.MinTrackingConf)
	}
	return nil
}

// Image is a read-only view of the RGB frame handed to detectors. It has no
// method that can write to the underlying pixels.
type Image struct {
	mat *gocv.Mat
}

// NewImage wraps an RGB Mat. The Mat must stay open while detectors run.
func NewImage(rgb *gocv.Mat) Image {
	return Image{mat: rgb}
}

// Empty reports whether the image holds no pixels.
func (i Image) Empty() bool { return i.mat == nil || i.mat.Empty() }

// Width returns the image width in pixels.
func (i Image) Width() int {
	if i.mat == nil {
		return 0
	}
	return i.mat.Cols()
}

// Height returns the image height in pixels.
func (i Image) Height() int {
	if i.mat == nil {
		return 0
	}
	return i.mat.Rows()
}

// Channels returns the number of color channels.
func (i Image) Channels() int {
	if i.mat == nil {
		return 0
	}
	return i.mat.Channels()
}

// Bytes returns a copy of the packed pixel data.
func (i Image) Bytes() []byte {
	if i.Empty() {
		return nil
	}
	return i.mat.ToBytes()
}
