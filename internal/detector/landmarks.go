// Package detector provides landmark detection interfaces and types for pose, face mesh and hands.
package detector

// Kind identifies one of the three landmark detectors.
type Kind int

const (
	KindPose Kind = iota
	KindFace
	KindHands
)

// Kinds lists every detector kind in drawing order.
var Kinds = []Kind{KindPose, KindFace, KindHands}

func (k Kind) String() string {
	switch k {
	case KindPose:
		return "pose"
	case KindFace:
		return "face_mesh"
	case KindHands:
		return "hands"
	default:
		return "unknown"
	}
}

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist            = 0
	ThumbCMC         = 1
	ThumbMCP         = 2
	ThumbIP          = 3
	ThumbTip         = 4
	IndexMCP         = 5
	IndexPIP         = 6
	IndexDIP         = 7
	IndexTip         = 8
	MiddleMCP        = 9
	MiddlePIP        = 10
	MiddleDIP        = 11
	MiddleTip        = 12
	RingMCP          = 13
	RingPIP          = 14
	RingDIP          = 15
	RingTip          = 16
	PinkyMCP         = 17
	PinkyPIP         = 18
	PinkyDIP         = 19
	PinkyTip         = 20
	NumHandLandmarks = 21
)

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose             = 0
	LeftEyeInner     = 1
	LeftEye          = 2
	LeftEyeOuter     = 3
	RightEyeInner    = 4
	RightEye         = 5
	RightEyeOuter    = 6
	LeftEar          = 7
	RightEar         = 8
	MouthLeft        = 9
	MouthRight       = 10
	LeftShoulder     = 11
	RightShoulder    = 12
	LeftElbow        = 13
	RightElbow       = 14
	LeftWrist        = 15
	RightWrist       = 16
	LeftPinky        = 17
	RightPinky       = 18
	LeftIndex        = 19
	RightIndex       = 20
	LeftThumb        = 21
	RightThumb       = 22
	LeftHip          = 23
	RightHip         = 24
	LeftKnee         = 25
	RightKnee        = 26
	LeftAnkle        = 27
	RightAnkle       = 28
	LeftHeel         = 29
	RightHeel        = 30
	LeftFootIndex    = 31
	RightFootIndex   = 32
	NumPoseLandmarks = 33
)

// NumFaceLandmarks is the size of the face mesh without iris refinement.
const NumFaceLandmarks = 468

// Landmark is one keypoint. X and Y are normalized to [0,1] by image width
// and height; Z is depth relative to the subject's reference point.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// LandmarkSet is the keypoints of one detected subject.
type LandmarkSet struct {
	Landmarks []Landmark `json:"landmarks"`

	// HasVisibility reports whether Visibility carries a score. Only the
	// pose detector sets it.
	HasVisibility bool    `json:"has_visibility"`
	Label         string  `json:"label,omitempty"` // "Left" or "Right" for hands
	Score         float64 `json:"score"`
}

// Len returns the number of landmarks.
func (s LandmarkSet) Len() int {
	return len(s.Landmarks)
}

// Results holds one frame's output of all three detectors.
// It is not retained across frames.
type Results struct {
	Pose  []LandmarkSet
	Face  []LandmarkSet
	Hands []LandmarkSet
}

// ByKind returns the sets reported by the given detector.
func (r Results) ByKind(k Kind) []LandmarkSet {
	switch k {
	case KindPose:
		return r.Pose
	case KindFace:
		return r.Face
	case KindHands:
		return r.Hands
	default:
		return nil
	}
}

// Set stores the sets reported by the given detector.
func (r *Results) Set(k Kind, sets []LandmarkSet) {
	switch k {
	case KindPose:
		r.Pose = sets
	case KindFace:
		r.Face = sets
	case KindHands:
		r.Hands = sets
	}
}

// Empty reports whether no detector found anything.
func (r Results) Empty() bool {
	return len(r.Pose) == 0 && len(r.Face) == 0 && len(r.Hands) == 0
}
