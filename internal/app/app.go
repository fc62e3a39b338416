// Package app runs the camera-to-canvas drawing loop.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/ayusman/scribbly/internal/capture"
	"github.com/ayusman/scribbly/internal/detector"
	"github.com/ayusman/scribbly/internal/interact"
	"github.com/ayusman/scribbly/internal/metrics"
	"github.com/ayusman/scribbly/internal/render"
	"github.com/ayusman/scribbly/internal/stroke"
)

// Config holds configuration options for the application.
type Config struct {
	Camera      capture.Config
	Detector    detector.Config
	Interaction interact.Config
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultConfig returns the standard capture, detection and interaction settings.
func DefaultConfig() Config {
	return Config{
		Camera:      capture.DefaultConfig(),
		Detector:    detector.DefaultConfig(),
		Interaction: interact.DefaultConfig(),
	}
}

// App owns the stroke history and drives one interaction step per frame.
type App struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	history    *stroke.History
	engine     *interact.Engine
	compositor *render.Compositor
	frames     *FrameBuffer
	metrics    *metrics.Metrics
	enabled    bool
	listeners  []func(interact.Button)
	lastAction string
	mu         sync.RWMutex
	stopCh     chan struct{}
	doneCh     chan struct{}
	now        func() time.Time
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	a := &App{
		config:     config,
		camera:     capture.NewCamera(config.Camera),
		history:    stroke.NewHistory(),
		compositor: render.NewCompositor(),
		frames:     NewFrameBuffer(),
		metrics:    config.Metrics,
		enabled:    true,
		now:        time.Now,
	}
	a.engine = interact.NewEngine(config.Interaction, a.history)
	a.engine.OnAction = a.handleAction

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("using mediapipe hand detection")
	} else {
		log.Printf("mediapipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables hand tracking. Frames keep flowing while
// disabled, but no detection runs and any open stroke is closed.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if !enabled {
		a.engine.Reset()
	}
	log.Printf("hand tracking enabled=%v", enabled)
}

// IsEnabled returns whether hand tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// OnAction registers fn to be called after every panel action.
func (a *App) OnAction(fn func(interact.Button)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// Trigger runs a panel action directly, as the tray and HTTP API do.
func (a *App) Trigger(b interact.Button) {
	a.engine.Trigger(b)
}

func (a *App) handleAction(b interact.Button) {
	a.metrics.ObserveAction(b)
	log.Printf("action: %s", b)

	a.mu.Lock()
	a.lastAction = b.String()
	listeners := append([]func(interact.Button){}, a.listeners...)
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(b)
	}
}

// LastAction returns the name of the most recent panel action, or "".
func (a *App) LastAction() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastAction
}

// Start opens the camera and runs the pipeline in the background.
func (a *App) Start() error {
	stopCh, doneCh, err := a.begin()
	if err != nil || stopCh == nil {
		return err
	}

	go func() {
		defer close(doneCh)
		a.runPipeline(context.Background(), stopCh, nil)
	}()

	log.Println("drawing pipeline started")
	return nil
}

// Run opens the camera and runs the pipeline on the calling goroutine,
// showing each composited frame on display if it is non-nil. It returns
// when ctx is cancelled, Stop is called or the display asks to quit.
func (a *App) Run(ctx context.Context, display Display) error {
	stopCh, doneCh, err := a.begin()
	if err != nil {
		return err
	}
	if stopCh == nil {
		return ErrAlreadyRunning
	}
	defer close(doneCh)

	log.Println("drawing pipeline started")
	return a.runPipeline(ctx, stopCh, display)
}

// begin opens the camera and allocates the run channels. A nil stop
// channel means the pipeline is already running.
func (a *App) begin() (chan struct{}, chan struct{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil, nil, nil
	}

	if err := a.camera.Open(); err != nil {
		return nil, nil, err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	return a.stopCh, a.doneCh, nil
}

// Stop halts the pipeline and releases the camera, detector and canvas.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("error closing detector: %v", err)
		}
	}

	a.compositor.Close()

	log.Println("drawing pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// History returns the stroke history.
func (a *App) History() *stroke.History {
	return a.history
}

// Engine returns the interaction engine.
func (a *App) Engine() *interact.Engine {
	return a.engine
}

// State returns the current UI state.
func (a *App) State() interact.State {
	return a.engine.State()
}

// Frames returns the buffer holding the latest composited frame.
func (a *App) Frames() *FrameBuffer {
	return a.frames
}
