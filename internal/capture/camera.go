// Package capture provides camera capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultFPS        = 30
	DefaultWidth      = 640
	DefaultHeight     = 480
	DefaultProbeLimit = 5
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrNoCamera is returned when no device could be opened.
	ErrNoCamera = errors.New("no camera available")
)

// Config describes the capture device.
type Config struct {
	DeviceID int `yaml:"device"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
	// Mirror flips frames horizontally so the view behaves like a mirror.
	Mirror bool `yaml:"mirror"`
	// ProbeLimit is how many device ids, starting at 0, are tried when
	// DeviceID cannot be opened. Zero disables probing.
	ProbeLimit int `yaml:"probe_limit"`
}

// DefaultConfig returns a mirrored 640x480 capture on device 0.
func DefaultConfig() Config {
	return Config{
		DeviceID:   0,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FPS:        DefaultFPS,
		Mirror:     true,
		ProbeLimit: DefaultProbeLimit,
	}
}

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	config  Config
	device  int
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for the given configuration.
// Non-positive sizes and rates fall back to the defaults.
func NewCamera(config Config) Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	return &cameraImpl{
		config: config,
		device: -1,
	}
}

// Open opens the configured device, falling back to the first working
// device id below ProbeLimit.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var firstErr error
	for _, id := range probeOrder(c.config.DeviceID, c.config.ProbeLimit) {
		capture, err := openDevice(id)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
		capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

		if id != c.config.DeviceID {
			log.Printf("camera %d unavailable, using camera %d", c.config.DeviceID, id)
		}
		c.capture = capture
		c.device = id
		c.running = true
		return nil
	}

	return fmt.Errorf("%w: %v", ErrNoCamera, firstErr)
}

func openDevice(id int) (*gocv.VideoCapture, error) {
	capture, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", id, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("open camera %d: device not opened", id)
	}
	return capture, nil
}

// probeOrder lists the device ids to try: preferred first, then 0..limit-1.
func probeOrder(preferred, limit int) []int {
	ids := []int{preferred}
	for id := 0; id < limit; id++ {
		if id != preferred {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	c.device = -1

	return err
}

// ReadFrame reads a single frame from the camera, mirrored if configured.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	if c.config.Mirror {
		Mirror(&mat)
	}

	return &mat, nil
}

// Mirror flips img around its vertical axis in place.
func Mirror(img *gocv.Mat) {
	gocv.Flip(*img, img, 1)
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.config.FPS = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.config.FPS
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
