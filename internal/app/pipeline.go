package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/scribbly/internal/detector"
	"github.com/ayusman/scribbly/internal/interact"
	"gocv.io/x/gocv"
)

// ErrAlreadyRunning is returned by Run when the pipeline is active.
var ErrAlreadyRunning = errors.New("pipeline already running")

// runPipeline is the main loop. Each tick handles one frame in full:
//
// 1. Read a frame from the camera
// 2. Detect the hand (skipped while tracking is disabled)
// 3. Step the interaction engine, which may mutate the stroke history
// 4. Composite panel, strokes and cursor onto the frame
// 5. Publish the JPEG and show the frame on the display, if any
//
// Per-frame errors are logged and the tick is skipped.
func (a *App) runPipeline(ctx context.Context, stopCh <-chan struct{}, display Display) error {
	fps := a.camera.FPS()
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-stopCh:
			return nil
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("error reading frame: %v", err)
				continue
			}

			if _, err := a.ProcessFrame(frame, a.now()); err != nil {
				log.Printf("error processing frame: %v", err)
			}

			quit := display != nil && display.Show(frame)
			frame.Close()
			if quit {
				log.Println("quit requested from window")
				return nil
			}
		}
	}
}

// ProcessFrame runs detection, interaction and compositing for one frame.
// The frame is drawn on in place.
func (a *App) ProcessFrame(frame *gocv.Mat, now time.Time) (interact.Result, error) {
	start := time.Now()

	var hands []detector.HandLandmarks
	if d := a.Detector(); d != nil && a.IsEnabled() {
		var err error
		hands, err = d.Detect(frame)
		if err != nil {
			a.metrics.DetectFailed()
			a.engine.Reset()
			return interact.Result{}, fmt.Errorf("detect hands: %w", err)
		}
	}

	res := a.engine.Step(toInput(hands, frame.Cols(), frame.Rows(), now))

	strokes := a.history.Strokes()
	a.compositor.Compose(frame, strokes, a.engine.State())

	if err := a.frames.Update(frame); err != nil {
		return res, fmt.Errorf("publish frame: %w", err)
	}

	a.metrics.ObserveStep(res, len(strokes), time.Since(start))
	return res, nil
}

// toInput converts detector output for a w x h frame to engine input.
// Only the first hand is used.
func toInput(hands []detector.HandLandmarks, w, h int, now time.Time) interact.Input {
	in := interact.Input{Width: w, Height: h, Time: now}

	hand, ok := detector.Primary(hands)
	if !ok {
		return in
	}

	in.Detected = true
	in.Tip = hand.Fingertip(w, h)
	in.Joint = hand.FingerJoint(w, h)
	return in
}
