package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Results are either fixed (SetHands) or consumed from a queue (Queue),
// one entry per Detect call.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	queue [][]HandLandmarks
	err   error
	calls int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect once the queue is empty.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Queue appends per-call results. A nil entry means "no hand" for that call.
func (m *MockDetector) Queue(results ...[]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result, or the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PointingAt returns a right hand with the index finger extended and its tip
// at (x, y) in normalized frame coordinates. The rest of the hand hangs below
// the fingertip.
func PointingAt(x, y float64) HandLandmarks {
	hand := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	offsets := [NumLandmarks]Point3D{
		Wrist:     {X: 0.00, Y: 0.30},
		ThumbCMC:  {X: 0.04, Y: 0.26},
		ThumbMCP:  {X: 0.07, Y: 0.22},
		ThumbIP:   {X: 0.08, Y: 0.18},
		ThumbTip:  {X: 0.06, Y: 0.15},
		IndexMCP:  {X: 0.02, Y: 0.16},
		IndexPIP:  {X: 0.01, Y: 0.10},
		IndexDIP:  {X: 0.005, Y: 0.05},
		IndexTip:  {X: 0.00, Y: 0.00},
		MiddleMCP: {X: -0.02, Y: 0.16},
		MiddlePIP: {X: -0.02, Y: 0.19, Z: -0.03},
		MiddleDIP: {X: -0.01, Y: 0.21, Z: -0.03},
		MiddleTip: {X: -0.01, Y: 0.19, Z: -0.02},
		RingMCP:   {X: -0.05, Y: 0.17},
		RingPIP:   {X: -0.05, Y: 0.20, Z: -0.03},
		RingDIP:   {X: -0.04, Y: 0.22, Z: -0.03},
		RingTip:   {X: -0.04, Y: 0.20, Z: -0.02},
		PinkyMCP:  {X: -0.08, Y: 0.19},
		PinkyPIP:  {X: -0.08, Y: 0.22, Z: -0.03},
		PinkyDIP:  {X: -0.07, Y: 0.23, Z: -0.03},
		PinkyTip:  {X: -0.07, Y: 0.22, Z: -0.02},
	}

	for i, o := range offsets {
		hand.Points[i] = Point3D{X: x + o.X, Y: y + o.Y, Z: o.Z}
	}

	return hand
}
