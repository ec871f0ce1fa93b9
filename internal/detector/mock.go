package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, including changing
// them while a pipeline is running.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
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
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// PinchedHandLandmarks returns a preset HandLandmarks with the thumb tip and
// index tip pressed together at (cx, cy). The pinch midpoint lands on (cx, cy),
// so two-hand scenes can be composed at exact distances and angles.
func PinchedHandLandmarks(cx, cy float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	// Wrist and palm below the pinch point
	lm.Points[Wrist] = Point3D{X: cx, Y: cy + 0.20, Z: 0}

	// Thumb chain converging on the pinch point from the left
	lm.Points[ThumbCMC] = Point3D{X: cx - 0.06, Y: cy + 0.16, Z: 0}
	lm.Points[ThumbMCP] = Point3D{X: cx - 0.05, Y: cy + 0.10, Z: 0}
	lm.Points[ThumbIP] = Point3D{X: cx - 0.02, Y: cy + 0.04, Z: 0}
	lm.Points[ThumbTip] = Point3D{X: cx - 0.005, Y: cy, Z: 0}

	// Index chain converging on the pinch point from the right
	lm.Points[IndexMCP] = Point3D{X: cx + 0.05, Y: cy + 0.12, Z: 0}
	lm.Points[IndexPIP] = Point3D{X: cx + 0.03, Y: cy + 0.07, Z: 0}
	lm.Points[IndexDIP] = Point3D{X: cx + 0.015, Y: cy + 0.03, Z: 0}
	lm.Points[IndexTip] = Point3D{X: cx + 0.005, Y: cy, Z: 0}

	// Remaining fingers loosely curled toward the palm
	curled := []struct{ mcp, pip, dip, tip int }{
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}
	for i, f := range curled {
		off := 0.02 * float64(i+1)
		lm.Points[f.mcp] = Point3D{X: cx + 0.06 + off, Y: cy + 0.13, Z: 0}
		lm.Points[f.pip] = Point3D{X: cx + 0.06 + off, Y: cy + 0.10, Z: -0.02}
		lm.Points[f.dip] = Point3D{X: cx + 0.05 + off, Y: cy + 0.11, Z: -0.03}
		lm.Points[f.tip] = Point3D{X: cx + 0.04 + off, Y: cy + 0.13, Z: -0.02}
	}

	return lm
}

// FrameCornerLandmarks returns a preset HandLandmarks forming an L-shape at
// (cx, cy): thumb extended along +X, index extended along -Y, tips spread
// well apart. Two of these at opposite corners form the photo-frame pose.
func FrameCornerLandmarks(cx, cy float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: cx - 0.04, Y: cy + 0.14, Z: 0}

	// Thumb extended horizontally
	lm.Points[ThumbCMC] = Point3D{X: cx - 0.02, Y: cy + 0.06, Z: 0}
	lm.Points[ThumbMCP] = Point3D{X: cx, Y: cy + 0.01, Z: 0}
	lm.Points[ThumbIP] = Point3D{X: cx + 0.08, Y: cy + 0.005, Z: 0}
	lm.Points[ThumbTip] = Point3D{X: cx + 0.15, Y: cy, Z: 0}

	// Index extended vertically
	lm.Points[IndexMCP] = Point3D{X: cx + 0.01, Y: cy, Z: 0}
	lm.Points[IndexPIP] = Point3D{X: cx + 0.005, Y: cy - 0.06, Z: 0}
	lm.Points[IndexDIP] = Point3D{X: cx, Y: cy - 0.11, Z: 0}
	lm.Points[IndexTip] = Point3D{X: cx, Y: cy - 0.15, Z: 0}

	// Remaining fingers curled into the palm
	curled := []struct{ mcp, pip, dip, tip int }{
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}
	for i, f := range curled {
		off := 0.02 * float64(i+1)
		lm.Points[f.mcp] = Point3D{X: cx + 0.01 + off, Y: cy + 0.04, Z: 0}
		lm.Points[f.pip] = Point3D{X: cx + 0.01 + off, Y: cy + 0.02, Z: -0.02}
		lm.Points[f.dip] = Point3D{X: cx + off, Y: cy + 0.03, Z: -0.03}
		lm.Points[f.tip] = Point3D{X: cx - 0.005 + off, Y: cy + 0.05, Z: -0.02}
	}

	return lm
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended.
// It satisfies neither the pinch nor the frame-corner configuration.
func OpenPalmLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0}

	// Thumb extended to the side
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	// Index finger extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0}

	// Middle finger extended upward
	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0}

	// Ring finger extended upward
	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0}

	// Pinky finger extended upward
	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0}

	return lm
}
