// Package app runs the capture, detect, draw and display loop of Landmarkcam.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ayusman/landmarkcam/internal/capture"
	"github.com/ayusman/landmarkcam/internal/config"
	"github.com/ayusman/landmarkcam/internal/detector"
	"github.com/ayusman/landmarkcam/internal/display"
	"github.com/ayusman/landmarkcam/internal/logging"
	"github.com/ayusman/landmarkcam/internal/overlay"
	"github.com/sirupsen/logrus"
)

// ErrDeviceUnavailable is returned by Run when the camera cannot be opened.
var ErrDeviceUnavailable = errors.New("camera device unavailable")

// FrameReport summarizes one presented frame.
type FrameReport struct {
	// Index counts presented frames from 1. Skipped reads are not counted.
	Index int

	// ShowLandmarks is the overlay flag the frame was drawn with.
	ShowLandmarks bool

	HUD string

	// Drawn holds the landmark sets drawn per detector. It is empty when
	// the overlay is off.
	Drawn map[detector.Kind]int

	Width  int
	Height int

	// Action is what the key polled after this frame asked for.
	Action Action
}

// Config holds everything the loop needs.
type Config struct {
	Settings config.Config

	// Camera defaults to the device named by Settings.CameraID.
	Camera capture.Camera

	// Detectors run on every frame, at most one per kind.
	Detectors []detector.Detector

	// OpenWindow defaults to display.Open.
	OpenWindow display.OpenFunc

	// Logger defaults to a discarding logger.
	Logger logrus.FieldLogger

	// OnFrame, when set, is called after each frame is presented.
	OnFrame func(FrameReport)

	// Stdout receives the banner and the controls legend, printed once the
	// camera and window are up. Defaults to io.Discard.
	Stdout io.Writer
}

// App is the landmark overlay loop.
type App struct {
	config     Config
	camera     capture.Camera
	detectors  []detector.Detector
	byKind     map[detector.Kind]detector.Detector
	openWindow display.OpenFunc
	renderer   *overlay.Renderer
	log        logrus.FieldLogger
	stdout     io.Writer
}

// New creates an App from config.
func New(config Config) (*App, error) {
	if err := config.Settings.Validate(); err != nil {
		return nil, err
	}

	byKind := make(map[detector.Kind]detector.Detector, len(config.Detectors))
	for _, d := range config.Detectors {
		if d == nil {
			return nil, errors.New("nil detector")
		}
		if _, dup := byKind[d.Kind()]; dup {
			return nil, fmt.Errorf("duplicate %s detector", d.Kind())
		}
		byKind[d.Kind()] = d
	}

	a := &App{
		config:     config,
		camera:     config.Camera,
		detectors:  config.Detectors,
		byKind:     byKind,
		openWindow: config.OpenWindow,
		renderer:   overlay.NewRenderer(),
		log:        config.Logger,
		stdout:     config.Stdout,
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(config.Settings.CameraID)
	}
	if a.openWindow == nil {
		a.openWindow = display.Open
	}
	if a.log == nil {
		a.log = logging.Discard()
	}
	if a.stdout == nil {
		a.stdout = io.Discard
	}

	return a, nil
}

// Run opens the camera and the window, then processes frames until the
// camera closes, a quit key is pressed or ctx is cancelled. Every resource
// is released before Run returns. A nil error means a clean shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		a.log.WithError(err).Errorf("Could not open camera %d", a.camera.DeviceID())
		a.closeDetectors()
		return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	s := a.config.Settings
	win, err := a.openWindow(display.Options{
		Title:  s.WindowTitle,
		Width:  s.WindowWidth,
		Height: s.WindowHeight,
		X:      s.WindowX,
		Y:      s.WindowY,
	})
	if err != nil {
		a.shutdown(nil)
		return fmt.Errorf("open window: %w", err)
	}
	a.printBanner()

	stats, err := a.loop(ctx, win)

	a.log.WithFields(logrus.Fields{
		"presented": stats.presented,
		"skipped":   stats.skipped,
	}).Info("Exiting...")
	a.shutdown(win)
	a.log.Info("Done.")

	return err
}

// Banner is printed when the loop starts.
const Banner = "Landmarkcam - Pose, Face and Hand Landmarks\n" +
	"Controls:\n" +
	"  L - toggle landmarks\n" +
	"  Q - quit\n"

func (a *App) printBanner() {
	fmt.Fprint(a.stdout, Banner)
}

// shutdown closes the detectors, then the camera, then the window.
// Failures are logged and do not stop the remaining steps.
func (a *App) shutdown(win display.Window) {
	a.closeDetectors()

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("Error closing camera")
	}

	if win != nil {
		if err := win.Close(); err != nil {
			a.log.WithError(err).Warn("Error closing window")
		}
	}
}

func (a *App) closeDetectors() {
	for _, d := range a.detectors {
		if err := d.Close(); err != nil {
			a.log.WithError(err).WithField("detector", d.Kind().String()).Warn("Error closing detector")
		}
	}
}

// topology resolves the connections drawn for a detector kind.
func (a *App) topology(k detector.Kind) []detector.Connection {
	if d, ok := a.byKind[k]; ok {
		return detector.TopologyFor(d)
	}
	return detector.Connections(k)
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}
