package detector

import (
	"context"
	"math"
	"sync"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	kind     Kind
	sets     []LandmarkSet
	err      error
	sequence func(call int) []LandmarkSet
	calls    int
	closed   bool
	mu       sync.Mutex
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector(kind Kind) *MockDetector {
	return &MockDetector{kind: kind}
}

// SetSets sets the landmark sets that will be returned by Detect.
func (m *MockDetector) SetSets(sets []LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = sets
}

// SetSequence makes Detect return fn(call), where call counts from 1.
// It takes precedence over SetSets.
func (m *MockDetector) SetSequence(fn func(call int) []LandmarkSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = fn
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured sets or error.
func (m *MockDetector) Detect(ctx context.Context, img Image) ([]LandmarkSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		return m.sequence(m.calls), nil
	}
	return m.sets, nil
}

func (m *MockDetector) Kind() Kind {
	return m.kind
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// StandingPose returns a preset pose of a person standing upright with arms
// slightly away from the body, centered in the frame.
func StandingPose() LandmarkSet {
	pts := make([]Landmark, NumPoseLandmarks)
	set := func(i int, x, y float64) {
		pts[i] = Landmark{X: x, Y: y, Z: -0.1, Visibility: 0.99}
	}

	// Head (subject faces the camera, so its left is image right)
	set(Nose, 0.50, 0.15)
	set(LeftEyeInner, 0.52, 0.13)
	set(LeftEye, 0.53, 0.13)
	set(LeftEyeOuter, 0.54, 0.13)
	set(RightEyeInner, 0.48, 0.13)
	set(RightEye, 0.47, 0.13)
	set(RightEyeOuter, 0.46, 0.13)
	set(LeftEar, 0.56, 0.14)
	set(RightEar, 0.44, 0.14)
	set(MouthLeft, 0.52, 0.18)
	set(MouthRight, 0.48, 0.18)

	// Arms
	set(LeftShoulder, 0.60, 0.28)
	set(RightShoulder, 0.40, 0.28)
	set(LeftElbow, 0.65, 0.42)
	set(RightElbow, 0.35, 0.42)
	set(LeftWrist, 0.68, 0.55)
	set(RightWrist, 0.32, 0.55)
	set(LeftPinky, 0.69, 0.58)
	set(RightPinky, 0.31, 0.58)
	set(LeftIndex, 0.68, 0.59)
	set(RightIndex, 0.32, 0.59)
	set(LeftThumb, 0.67, 0.57)
	set(RightThumb, 0.33, 0.57)

	// Legs
	set(LeftHip, 0.56, 0.56)
	set(RightHip, 0.44, 0.56)
	set(LeftKnee, 0.57, 0.72)
	set(RightKnee, 0.43, 0.72)
	set(LeftAnkle, 0.57, 0.88)
	set(RightAnkle, 0.43, 0.88)
	set(LeftHeel, 0.56, 0.90)
	set(RightHeel, 0.44, 0.90)
	set(LeftFootIndex, 0.59, 0.92)
	set(RightFootIndex, 0.41, 0.92)

	return LandmarkSet{
		Landmarks:     pts,
		HasVisibility: true,
		Score:         0.97,
	}
}

// FaceRing returns a preset face mesh: every landmark placed on an ellipse
// around the upper middle of the frame.
func FaceRing() LandmarkSet {
	pts := make([]Landmark, NumFaceLandmarks)
	for i := range pts {
		angle := 2 * math.Pi * float64(i) / float64(NumFaceLandmarks)
		pts[i] = Landmark{
			X: 0.5 + 0.08*math.Cos(angle),
			Y: 0.2 + 0.11*math.Sin(angle),
			Z: -0.02,
		}
	}
	return LandmarkSet{Landmarks: pts, Score: 0.99}
}

// OpenPalm returns a preset hand with all fingers extended outward.
func OpenPalm() LandmarkSet {
	pts := make([]Landmark, NumHandLandmarks)
	set := func(i int, x, y, z float64) {
		pts[i] = Landmark{X: x, Y: y, Z: z}
	}

	// Wrist at base
	set(Wrist, 0.5, 0.8, 0.0)

	// Thumb extended to the side
	set(ThumbCMC, 0.55, 0.75, 0.02)
	set(ThumbMCP, 0.62, 0.70, 0.03)
	set(ThumbIP, 0.68, 0.65, 0.03)
	set(ThumbTip, 0.73, 0.60, 0.03)

	// Index finger extended upward
	set(IndexMCP, 0.55, 0.68, 0.0)
	set(IndexPIP, 0.57, 0.55, 0.0)
	set(IndexDIP, 0.58, 0.45, 0.0)
	set(IndexTip, 0.58, 0.35, 0.0)

	// Middle finger extended upward (slightly longer)
	set(MiddleMCP, 0.50, 0.66, 0.0)
	set(MiddlePIP, 0.50, 0.52, 0.0)
	set(MiddleDIP, 0.50, 0.40, 0.0)
	set(MiddleTip, 0.50, 0.28, 0.0)

	// Ring finger extended upward
	set(RingMCP, 0.45, 0.68, 0.0)
	set(RingPIP, 0.43, 0.55, 0.0)
	set(RingDIP, 0.42, 0.45, 0.0)
	set(RingTip, 0.42, 0.35, 0.0)

	// Pinky finger extended upward
	set(PinkyMCP, 0.40, 0.70, 0.0)
	set(PinkyPIP, 0.37, 0.60, 0.0)
	set(PinkyDIP, 0.35, 0.50, 0.0)
	set(PinkyTip, 0.34, 0.42, 0.0)

	return LandmarkSet{
		Landmarks: pts,
		Label:     "Right",
		Score:     0.95,
	}
}
