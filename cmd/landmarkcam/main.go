package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/landmarkcam/internal/app"
	"github.com/ayusman/landmarkcam/internal/config"
	"github.com/ayusman/landmarkcam/internal/detector"
	"github.com/ayusman/landmarkcam/internal/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logging.WithSession(logging.New(cfg.LogLevel))

	dets, err := newDetectors(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Landmark detection unavailable: %v\n", err)
		fmt.Fprintf(os.Stderr, "Set %s to the path of %s (and %s to its Python).\n",
			config.EnvScript, detector.ScriptName, config.EnvPython)
		return 1
	}

	a, err := app.New(app.Config{
		Settings:  cfg,
		Detectors: dets,
		Logger:    log,
		Stdout:    os.Stdout,
	})
	if err != nil {
		log.WithError(err).Error("Failed to initialize")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		log.WithError(err).Error("Stopped with error")
		return 1
	}
	return 0
}

// newDetectors returns the pose, face mesh and hands detectors backed by
// the MediaPipe service. A missing service is fatal.
func newDetectors(cfg config.Config, log logrus.FieldLogger) ([]detector.Detector, error) {
	backend, err := detector.LocateBackend(cfg.PythonPath, cfg.ScriptPath)
	if err != nil {
		return nil, err
	}
	log.WithField("script", backend.Script).Info("Using MediaPipe landmark detection")

	maxResults := map[detector.Kind]int{
		detector.KindPose:  1,
		detector.KindFace:  cfg.MaxFaces,
		detector.KindHands: cfg.MaxHands,
	}

	dets := make([]detector.Detector, 0, len(detector.Kinds))
	for _, k := range detector.Kinds {
		dc := detector.Config{
			Kind:            k,
			MaxResults:      maxResults[k],
			MinConfidence:   cfg.MinDetectionConf,
			MinTrackingConf: cfg.MinTrackingConf,
		}
		d, err := detector.NewMediaPipeDetector(dc, backend, log)
		if err != nil {
			for _, made := range dets {
				made.Close()
			}
			return nil, fmt.Errorf("%s detector: %w", k, err)
		}
		dets = append(dets, d)
	}
	return dets, nil
}
