package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/landmarkcam/internal/capture"
	"github.com/ayusman/landmarkcam/internal/detector"
	"github.com/ayusman/landmarkcam/internal/display"
	"github.com/ayusman/landmarkcam/internal/overlay"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

type loopStats struct {
	presented int
	skipped   int
}

// loop is the frame loop. Per frame:
//  1. read; a failed read is logged and the iteration skipped
//  2. mirror, convert to RGB and run every detector on it
//  3. resize the mirrored frame for display
//  4. draw the landmarks when the overlay is on, then the HUD
//  5. present, poll one key and apply it
func (a *App) loop(ctx context.Context, win display.Window) (loopStats, error) {
	var stats loopStats
	state := InitialState()

	for a.camera.IsOpen() {
		if ctx.Err() != nil {
			return stats, nil
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.log.WithError(err).Warn("Ignoring empty frame")
			stats.skipped++
			continue
		}

		report, err := a.processFrame(ctx, win, frame, state, stats.presented+1)
		frame.Close()
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return stats, nil
			}
			return stats, err
		}

		stats.presented++
		if a.config.OnFrame != nil {
			a.config.OnFrame(report)
		}

		if report.Action == ActionQuit {
			return stats, nil
		}
		if report.Action == ActionToggle {
			a.log.WithField("overlay", !state.ShowLandmarks).Debug("Overlay toggled")
		}
		state = state.Apply(report.Action)
	}

	return stats, nil
}

// processFrame runs one iteration on a successfully read frame.
func (a *App) processFrame(ctx context.Context, win display.Window, frame *gocv.Mat, state State, index int) (FrameReport, error) {
	mirrored := capture.Mirror(*frame)
	defer mirrored.Close()

	rgb := capture.ToRGB(mirrored)
	defer rgb.Close()

	results, err := a.detectAll(ctx, detector.NewImage(&rgb))
	if err != nil {
		return FrameReport{}, err
	}

	s := a.config.Settings
	out := capture.Resize(mirrored, s.WindowWidth, s.WindowHeight)
	defer out.Close()

	report := FrameReport{
		Index:         index,
		ShowLandmarks: state.ShowLandmarks,
		HUD:           state.HUDText(),
		Drawn:         map[detector.Kind]int{},
		Width:         out.Cols(),
		Height:        out.Rows(),
	}

	if state.ShowLandmarks {
		report.Drawn = a.renderer.Draw(&out, results, a.topology)
	}
	overlay.DrawHUD(&out, state.ShowLandmarks)

	if err := win.Show(out); err != nil {
		return FrameReport{}, fmt.Errorf("show frame %d: %w", index, err)
	}

	report.Action = ParseKey(win.WaitKey(s.KeyPollMillis()))
	return report, nil
}

// detectAll runs every detector on img concurrently and joins the results.
// Each detector writes only its own slot. The first error cancels the rest.
func (a *App) detectAll(ctx context.Context, img detector.Image) (detector.Results, error) {
	sets := make([][]detector.LandmarkSet, len(a.detectors))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range a.detectors {
		g.Go(func() error {
			found, err := d.Detect(gctx, img)
			if err != nil {
				return fmt.Errorf("%s detector: %w", d.Kind(), err)
			}
			sets[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return detector.Results{}, err
	}

	var results detector.Results
	for i, d := range a.detectors {
		results.Set(d.Kind(), sets[i])
	}
	return results, nil
}
