package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/landmarkcam/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		kind        Kind
		wantResults int
	}{
		{KindPose, 1},
		{KindFace, 1},
		{KindHands, 2},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			cfg := DefaultConfig(tt.kind)

			assert.Equal(t, tt.kind, cfg.Kind)
			assert.Equal(t, tt.wantResults, cfg.MaxResults)
			assert.Equal(t, 0.5, cfg.MinConfidence)
			assert.Equal(t, 0.5, cfg.MinTrackingConf)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown kind", func(c *Config) { c.Kind = Kind(7) }},
		{"zero results", func(c *Config) { c.MaxResults = 0 }},
		{"two poses", func(c *Config) { c.Kind = KindPose; c.MaxResults = 2 }},
		{"detection confidence above 1", func(c *Config) { c.MinConfidence = 1.01 }},
		{"tracking confidence below 0", func(c *Config) { c.MinTrackingConf = -0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(KindHands)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "pose", KindPose.String())
	assert.Equal(t, "face_mesh", KindFace.String())
	assert.Equal(t, "hands", KindHands.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestResults(t *testing.T) {
	var r Results
	assert.True(t, r.Empty())

	r.Set(KindHands, []LandmarkSet{OpenPalm(), OpenPalm()})
	assert.False(t, r.Empty())
	assert.Len(t, r.ByKind(KindHands), 2)
	assert.Empty(t, r.ByKind(KindPose))
	assert.Empty(t, r.ByKind(KindFace))

	r.Set(KindPose, []LandmarkSet{StandingPose()})
	r.Set(KindFace, []LandmarkSet{FaceRing()})
	assert.Len(t, r.Pose, 1)
	assert.Len(t, r.Face, 1)
	assert.Nil(t, r.ByKind(Kind(9)))
}

func TestTopology(t *testing.T) {
	tests := []struct {
		kind      Kind
		edges     int
		landmarks int
	}{
		{KindPose, 35, NumPoseLandmarks},
		{KindFace, 36, NumFaceLandmarks},
		{KindHands, 21, NumHandLandmarks},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			conns := Connections(tt.kind)
			require.Len(t, conns, tt.edges)

			seen := make(map[Connection]bool)
			for _, c := range conns {
				assert.True(t, c.From >= 0 && c.From < tt.landmarks, "from %d out of range", c.From)
				assert.True(t, c.To >= 0 && c.To < tt.landmarks, "to %d out of range", c.To)
				assert.NotEqual(t, c.From, c.To)
				assert.False(t, seen[c], "duplicate edge %v", c)
				seen[c] = true
			}
		})
	}
}

func TestFaceOval_Closed(t *testing.T) {
	first := FaceOvalConnections[0]
	last := FaceOvalConnections[len(FaceOvalConnections)-1]
	assert.Equal(t, first.From, last.To)
}

func TestTopologyFor(t *testing.T) {
	t.Run("built-in for plain detectors", func(t *testing.T) {
		assert.Equal(t, HandConnections, TopologyFor(NewMockDetector(KindHands)))
		assert.Equal(t, FaceOvalConnections, TopologyFor(NewMockDetector(KindFace)))
	})

	t.Run("backend topology wins when reported", func(t *testing.T) {
		d := &MediaPipeDetector{config: DefaultConfig(KindFace)}
		assert.Equal(t, FaceOvalConnections, TopologyFor(d))

		d.connections = []Connection{{0, 1}, {1, 2}}
		assert.Equal(t, d.connections, TopologyFor(d))
	})
}

func TestMockDetector(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty sets by default", func(t *testing.T) {
		mock := NewMockDetector(KindPose)

		sets, err := mock.Detect(ctx, Image{})

		assert.NoError(t, err)
		assert.Nil(t, sets)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured sets", func(t *testing.T) {
		mock := NewMockDetector(KindHands)
		mock.SetSets([]LandmarkSet{OpenPalm(), OpenPalm()})

		sets, err := mock.Detect(ctx, Image{})

		assert.NoError(t, err)
		assert.Len(t, sets, 2)
	})

	t.Run("sequence overrides sets", func(t *testing.T) {
		mock := NewMockDetector(KindFace)
		mock.SetSets([]LandmarkSet{FaceRing()})
		mock.SetSequence(func(call int) []LandmarkSet {
			if call%2 == 0 {
				return nil
			}
			return []LandmarkSet{FaceRing()}
		})

		first, _ := mock.Detect(ctx, Image{})
		second, _ := mock.Detect(ctx, Image{})
		assert.Len(t, first, 1)
		assert.Empty(t, second)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector(KindPose)

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		sets, err := mock.Detect(ctx, Image{})

		assert.Equal(t, expectedErr, err)
		assert.Nil(t, sets)
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector(KindPose)
		require.NoError(t, mock.Close())
		assert.True(t, mock.Closed())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
		var _ TopologyProvider = (*MediaPipeDetector)(nil)
	})
}

func TestFixtures(t *testing.T) {
	inUnitSquare := func(t *testing.T, set LandmarkSet) {
		for i, p := range set.Landmarks {
			assert.True(t, p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1, "landmark %d at (%f,%f)", i, p.X, p.Y)
		}
	}

	t.Run("standing pose", func(t *testing.T) {
		pose := StandingPose()
		require.Len(t, pose.Landmarks, NumPoseLandmarks)
		assert.True(t, pose.HasVisibility)
		inUnitSquare(t, pose)
		assert.Less(t, pose.Landmarks[Nose].Y, pose.Landmarks[LeftHip].Y, "head above hips")
	})

	t.Run("face ring", func(t *testing.T) {
		face := FaceRing()
		require.Len(t, face.Landmarks, NumFaceLandmarks)
		assert.False(t, face.HasVisibility)
		inUnitSquare(t, face)
	})

	t.Run("open palm", func(t *testing.T) {
		hand := OpenPalm()
		require.Len(t, hand.Landmarks, NumHandLandmarks)
		assert.Equal(t, "Right", hand.Label)
		inUnitSquare(t, hand)

		// For extended fingers, the tip is above (lower Y) the MCP
		for _, f := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
			assert.Greater(t, hand.Landmarks[f[0]].Y-hand.Landmarks[f[1]].Y, 0.2)
		}
	})
}

func TestImage_Zero(t *testing.T) {
	var img Image
	assert.True(t, img.Empty())
	assert.Zero(t, img.Width())
	assert.Zero(t, img.Height())
	assert.Nil(t, img.Bytes())
}

// fakeService answers one frame per request the way the MediaPipe service
// does, recording the headers it received.
func fakeService(t *testing.T, in io.Reader, out io.Writer, replies []string, headers chan<- [4]uint32) {
	t.Helper()
	for _, reply := range replies {
		var raw [frameHeaderSize]byte
		if _, err := io.ReadFull(in, raw[:]); err != nil {
			return
		}
		var h [4]uint32
		for i := range h {
			h[i] = binary.BigEndian.Uint32(raw[i*4:])
		}
		if _, err := io.CopyN(io.Discard, in, int64(h[3])); err != nil {
			return
		}
		headers <- h
		fmt.Fprintln(out, reply)
	}
}

func TestExchange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := gocv.NewMatWithSize(6, 8, gocv.MatTypeCV8UC3)
	defer mat.Close()
	img := NewImage(&mat)

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()
	defer reqW.Close()
	defer respW.Close()

	headers := make(chan [4]uint32, 3)
	go fakeService(t, reqR, respW, []string{
		`{"results":[{"landmarks":[{"x":0.1,"y":0.2,"z":0.3,"visibility":0.9},{"x":0.4,"y":0.5,"z":0.6,"visibility":0.2}],"score":0.8}]}`,
		`{"results":[],"connections":[[0,1],[1,2]]}`,
		`{"error":"model not loaded"}`,
	}, headers)

	reader := bufio.NewReader(respR)

	resp, err := exchange(reqW, reader, img)
	require.NoError(t, err)
	assert.Equal(t, [4]uint32{8, 6, 3, 8 * 6 * 3}, <-headers)

	sets := resp.landmarkSets(DefaultConfig(KindPose))
	require.Len(t, sets, 1)
	assert.True(t, sets[0].HasVisibility)
	assert.Equal(t, Landmark{X: 0.1, Y: 0.2, Z: 0.3, Visibility: 0.9}, sets[0].Landmarks[0])
	assert.Equal(t, 0.8, sets[0].Score)

	resp, err = exchange(reqW, reader, img)
	require.NoError(t, err)
	<-headers
	assert.Empty(t, resp.landmarkSets(DefaultConfig(KindFace)))
	assert.Equal(t, []Connection{{0, 1}, {1, 2}}, resp.connectionList())

	_, err = exchange(reqW, reader, img)
	<-headers
	assert.ErrorContains(t, err, "model not loaded")
}

func TestResponse_LandmarkSets(t *testing.T) {
	hand := jsonResult{
		Landmarks: []jsonPoint{{X: 0.5, Y: 0.5}},
		Label:     "Left",
		Score:     0.9,
	}
	resp := response{Results: []jsonResult{hand, hand, hand}}

	sets := resp.landmarkSets(DefaultConfig(KindHands))
	require.Len(t, sets, 2, "capped at MaxResults")
	assert.Equal(t, "Left", sets[0].Label)
	assert.False(t, sets[0].HasVisibility)
}

func TestLocateBackend(t *testing.T) {
	t.Run("explicit paths", func(t *testing.T) {
		script := filepath.Join(t.TempDir(), ScriptName)
		require.NoError(t, os.WriteFile(script, []byte("# service\n"), 0o644))

		b, err := LocateBackend("/usr/bin/python3.12", script)
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/python3.12", b.Python)
		assert.Equal(t, script, b.Script)
	})

	t.Run("missing script", func(t *testing.T) {
		_, err := LocateBackend("", filepath.Join(t.TempDir(), ScriptName))
		assert.ErrorIs(t, err, ErrBackendNotFound)
	})
}

func TestNewMediaPipeDetector(t *testing.T) {
	log := logging.Discard()

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig(KindHands)
		cfg.MaxResults = 0
		_, err := NewMediaPipeDetector(cfg, Backend{Python: "python3", Script: ScriptName}, log)
		assert.Error(t, err)
	})

	t.Run("requires a script", func(t *testing.T) {
		_, err := NewMediaPipeDetector(DefaultConfig(KindPose), Backend{Python: "python3"}, log)
		assert.ErrorIs(t, err, ErrBackendNotFound)
	})

	t.Run("passes settings to the service", func(t *testing.T) {
		d, err := NewMediaPipeDetector(DefaultConfig(KindHands), Backend{Python: "python3", Script: "svc.py"}, log)
		require.NoError(t, err)
		assert.Equal(t, KindHands, d.Kind())
		assert.Equal(t, []string{
			"svc.py",
			"--task", "hands",
			"--max-results", "2",
			"--min-detection-confidence", "0.5",
			"--min-tracking-confidence", "0.5",
		}, d.args())
		assert.NoError(t, d.Close(), "closing a detector that never started")
	})

	t.Run("cancelled context", func(t *testing.T) {
		d, err := NewMediaPipeDetector(DefaultConfig(KindPose), Backend{Python: "python3", Script: "svc.py"}, log)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = d.Detect(ctx, Image{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
