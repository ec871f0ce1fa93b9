package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector produces hand landmarks from video frames. Implementations must
// be safe to call from the pipeline goroutine and return an empty slice,
// not an error, when the frame simply contains no hands.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the landmark model service.
type Config struct {
	// MaxHands caps how many hands the model reports per frame.
	MaxHands int

	// MinDetectionConfidence and MinTrackingConfidence are the model's
	// per-frame detection and cross-frame tracking thresholds, 0 to 1.
	MinDetectionConfidence float64
	MinTrackingConfidence  float64

	// ScriptPath and PythonPath override the default service discovery.
	// Empty values fall back to searching well-known locations.
	ScriptPath string
	PythonPath string

	// IdleTimeout stops the service process after this long without a
	// detection request. Zero uses the default.
	IdleTimeout time.Duration
}

// DefaultConfig matches the two-hand gesture pipeline: at most two hands,
// moderate confidence so partially occluded hands still track.
func DefaultConfig() Config {
	return Config{
		MaxHands:               2,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		IdleTimeout:            30 * time.Second,
	}
}
