package detector

// Connection is an edge between two landmark indices.
type Connection struct {
	From int
	To   int
}

// PoseConnections is the canonical body skeleton.
var PoseConnections = []Connection{
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{MouthLeft, MouthRight},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{LeftWrist, LeftPinky}, {LeftWrist, LeftIndex}, {LeftWrist, LeftThumb}, {LeftPinky, LeftIndex},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{RightWrist, RightPinky}, {RightWrist, RightIndex}, {RightWrist, RightThumb}, {RightPinky, RightIndex},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
	{LeftHip, LeftKnee}, {RightHip, RightKnee},
	{LeftKnee, LeftAnkle}, {RightKnee, RightAnkle},
	{LeftAnkle, LeftHeel}, {RightAnkle, RightHeel},
	{LeftHeel, LeftFootIndex}, {RightHeel, RightFootIndex},
	{LeftAnkle, LeftFootIndex}, {RightAnkle, RightFootIndex},
}

// HandConnections is the canonical hand skeleton.
var HandConnections = []Connection{
	// palm
	{Wrist, ThumbCMC}, {Wrist, IndexMCP}, {IndexMCP, MiddleMCP}, {MiddleMCP, RingMCP}, {RingMCP, PinkyMCP}, {Wrist, PinkyMCP},
	{ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// faceOval is the closed outline of the face mesh, in order.
var faceOval = []int{
	10, 338, 297, 332, 284, 251, 389, 356, 454, 323, 361, 288,
	397, 365, 379, 378, 400, 377, 152, 148, 176, 149, 150, 136,
	172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109,
}

// FaceOvalConnections outlines the face. The MediaPipe face detector always
// draws the tessellation its service reports (see ErrNoTopology); the oval
// is what detectors without a backend topology get.
var FaceOvalConnections = closedLoop(faceOval)

func closedLoop(idx []int) []Connection {
	conns := make([]Connection, len(idx))
	for i := range idx {
		conns[i] = Connection{From: idx[i], To: idx[(i+1)%len(idx)]}
	}
	return conns
}

// Connections returns the built-in topology for a detector kind.
func Connections(k Kind) []Connection {
	switch k {
	case KindPose:
		return PoseConnections
	case KindFace:
		return FaceOvalConnections
	case KindHands:
		return HandConnections
	default:
		return nil
	}
}

// TopologyProvider is implemented by detectors whose backend reports its
// own connection topology.
type TopologyProvider interface {
	Connections() []Connection
}

// TopologyFor returns the topology reported by d when it has one, and the
// built-in topology for d's kind otherwise.
func TopologyFor(d Detector) []Connection {
	if p, ok := d.(TopologyProvider); ok {
		if conns := p.Connections(); len(conns) > 0 {
			return conns
		}
	}
	return Connections(d.Kind())
}
