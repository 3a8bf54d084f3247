package detector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// ScriptName is the MediaPipe service the detectors talk to.
const ScriptName = "mediapipe_service.py"

// DefaultIdleTimeout stops a backend process that has not been used.
const DefaultIdleTimeout = 30 * time.Second

// ErrBackendNotFound is returned when the MediaPipe service cannot be located.
var ErrBackendNotFound = errors.New(ScriptName + " not found")

// ErrNoTopology is returned when the face mesh service does not report its
// tessellation with the first result.
var ErrNoTopology = errors.New("backend reported no connections")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Backend locates the interpreter and script of the MediaPipe service.
type Backend struct {
	Python string

	// PythonArgs go to the interpreter ahead of the script, e.g. "-u".
	PythonArgs []string

	Script string
}

// LocateBackend resolves the service location. Explicit paths win; empty
// ones fall back to well-known locations.
func LocateBackend(python, script string) (Backend, error) {
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return Backend{}, ErrBackendNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return Backend{}, fmt.Errorf("%w: %v", ErrBackendNotFound, err)
	}

	// Use virtual environment Python if available
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	return Backend{Python: python, Script: script}, nil
}

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess.
// Each detector owns its own process.
type MediaPipeDetector struct {
	config      Config
	backend     Backend
	log         logrus.FieldLogger
	idleTimeout time.Duration

	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stdout      *bufio.Reader
	mu          sync.Mutex
	started     bool
	idleTimer   *time.Timer
	connections []Connection
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, backend Backend, log logrus.FieldLogger) (*MediaPipeDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if backend.Script == "" {
		return nil, ErrBackendNotFound
	}

	return &MediaPipeDetector{
		config:      config,
		backend:     backend,
		log:         log.WithField("detector", config.Kind.String()),
		idleTimeout: DefaultIdleTimeout,
	}, nil
}

// Kind reports which landmarks the detector produces.
func (d *MediaPipeDetector) Kind() Kind {
	return d.config.Kind
}

// Connections returns the topology reported by the backend, if any.
func (d *MediaPipeDetector) Connections() []Connection {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connections
}

// Detect analyzes a frame and returns the detected landmark sets.
func (d *MediaPipeDetector) Detect(ctx context.Context, img Image) ([]LandmarkSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img.Empty() {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	resp, err := exchange(d.stdin, d.stdout, img)
	if err != nil {
		// The stream is out of sync; restart on the next call.
		d.shutdown()
		return nil, err
	}

	if len(resp.Connections) > 0 && d.connections == nil {
		d.connections = resp.connectionList()
		d.log.Debugf("Backend reported %d connections", len(d.connections))
	}
	if d.config.Kind == KindFace && d.connections == nil {
		d.shutdown()
		return nil, fmt.Errorf("%s: %w", d.config.Kind, ErrNoTopology)
	}

	d.resetIdleTimer()

	return resp.landmarkSets(d.config), nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) args() []string {
	args := append([]string(nil), d.backend.PythonArgs...)
	return append(args,
		d.backend.Script,
		"--task", d.config.Kind.String(),
		"--max-results", strconv.Itoa(d.config.MaxResults),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	)
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.backend.Python, d.args()...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Capture stderr for debugging
	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.log.Infof("Started MediaPipe service (pid %d)", d.cmd.Process.Pid)

	return nil
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.idleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.log.Debug("Stopping idle MediaPipe service")
		d.shutdown()
	})
}

// frameHeaderSize is four big-endian uint32s: width, height, channels, length.
const frameHeaderSize = 16

// exchange writes one frame and reads one JSON response line.
func exchange(w io.Writer, r *bufio.Reader, img Image) (*response, error) {
	data := img.Bytes()

	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[0:4], uint32(img.Width()))
	binary.BigEndian.PutUint32(header[4:8], uint32(img.Height()))
	binary.BigEndian.PutUint32(header[8:12], uint32(img.Channels()))
	binary.BigEndian.PutUint32(header[12:16], uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("mediapipe service: %s", resp.Error)
	}

	return &resp, nil
}

// response is the JSON structure from the Python service.
type response struct {
	Results     []jsonResult `json:"results"`
	Connections [][2]int     `json:"connections,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type jsonResult struct {
	Landmarks []jsonPoint `json:"landmarks"`
	Label     string      `json:"label"`
	Score     float64     `json:"score"`
}

type jsonPoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

func (r *response) connectionList() []Connection {
	conns := make([]Connection, len(r.Connections))
	for i, c := range r.Connections {
		conns[i] = Connection{From: c[0], To: c[1]}
	}
	return conns
}

// landmarkSets converts the response, keeping at most MaxResults sets.
func (r *response) landmarkSets(cfg Config) []LandmarkSet {
	n := len(r.Results)
	if n > cfg.MaxResults {
		n = cfg.MaxResults
	}

	sets := make([]LandmarkSet, 0, n)
	for _, res := range r.Results[:n] {
		set := LandmarkSet{
			Landmarks: make([]Landmark, len(res.Landmarks)),
			Label:     res.Label,
			Score:     res.Score,
		}
		for i, p := range res.Landmarks {
			set.Landmarks[i] = Landmark{X: p.X, Y: p.Y, Z: p.Z}
			if p.Visibility != nil {
				set.Landmarks[i].Visibility = *p.Visibility
				set.HasVisibility = true
			}
		}
		sets = append(sets, set)
	}
	return sets
}

func findMediaPipeScript() string {
	// Get executable directory
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		filepath.Join("scripts", ScriptName),
		filepath.Join("..", "scripts", ScriptName),
		filepath.Join(execDir, "scripts", ScriptName),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".landmarkcam", "scripts", ScriptName))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	candidates := []string{
		"venv/bin/python",
		"../venv/bin/python",
	}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), "venv/bin/python"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".landmarkcam", "venv", "bin", "python"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}
