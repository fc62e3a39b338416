package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence queues per-call results. Each Detect consumes one entry;
// once the queue is drained the last entry keeps being returned.
func (m *MockDetector) SetSequence(seq [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = seq
	if len(seq) > 0 {
		m.hands = seq[len(seq)-1]
	}
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has run.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingLandmarks returns a hand with the index finger extended and its
// tip at normalized (x, y). The middle joint sits below the tip.
func PointingLandmarks(x, y float64) HandLandmarks {
	lm := handBase(x, y)

	lm.Points[IndexMCP] = Point3D{X: x, Y: y + 0.18}
	lm.Points[IndexPIP] = Point3D{X: x, Y: y + 0.12}
	lm.Points[IndexDIP] = Point3D{X: x, Y: y + 0.06}
	lm.Points[IndexTip] = Point3D{X: x, Y: y}

	return lm
}

// CurledLandmarks returns a hand with the index fingertip at normalized
// (x, y) folded below its middle joint.
func CurledLandmarks(x, y float64) HandLandmarks {
	lm := handBase(x, y)

	lm.Points[IndexMCP] = Point3D{X: x, Y: y - 0.02, Z: -0.02}
	lm.Points[IndexPIP] = Point3D{X: x, Y: y - 0.04, Z: -0.05}
	lm.Points[IndexDIP] = Point3D{X: x, Y: y - 0.02, Z: -0.04}
	lm.Points[IndexTip] = Point3D{X: x, Y: y}

	return lm
}

// handBase places a right hand with curled middle, ring and pinky fingers
// around (x, y).
func handBase(x, y float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: x, Y: y + 0.35}

	lm.Points[ThumbCMC] = Point3D{X: x + 0.05, Y: y + 0.30}
	lm.Points[ThumbMCP] = Point3D{X: x + 0.08, Y: y + 0.25}
	lm.Points[ThumbIP] = Point3D{X: x + 0.08, Y: y + 0.20}
	lm.Points[ThumbTip] = Point3D{X: x + 0.06, Y: y + 0.17}

	for i, base := range []int{MiddleMCP, RingMCP, PinkyMCP} {
		dx := -0.04 * float64(i+1)
		lm.Points[base] = Point3D{X: x + dx, Y: y + 0.20, Z: -0.02}
		lm.Points[base+1] = Point3D{X: x + dx, Y: y + 0.17, Z: -0.05}
		lm.Points[base+2] = Point3D{X: x + dx, Y: y + 0.19, Z: -0.04}
		lm.Points[base+3] = Point3D{X: x + dx, Y: y + 0.21, Z: -0.02}
	}

	return lm
}
