// Package gesture interprets hand landmarks as zoom, rotate, and
// photo-capture gestures.
package gesture

import "time"

// Config holds the tunable thresholds for gesture interpretation.
// All distances are in normalized image coordinates (0-1 across the frame),
// angles in degrees. The defaults come from empirical tuning against a
// 640x480 webcam feed; deployments should treat them as starting points.
type Config struct {
	// PinchThreshold is the maximum thumb-tip to index-tip distance for a
	// hand to count as pinched.
	PinchThreshold float64

	// ZoomDeadZone is the minimum inter-hand distance change between frames
	// before a ZoomDelta is emitted.
	ZoomDeadZone float64

	// ZoomGain scales the distance change into a zoom factor:
	// scale = 1 + delta*ZoomGain.
	ZoomGain float64

	// RotateDeadZone is the minimum inter-hand angle change in degrees
	// before a RotateDelta is emitted.
	RotateDeadZone float64

	// RotateGain scales the angle change into the emitted rotation delta.
	RotateGain float64

	// FrameAngleTolerance is the allowed deviation from 90 degrees between
	// the thumb and index directions for the frame-corner (L-shape) pose.
	FrameAngleTolerance float64

	// MinSpread is the minimum thumb-tip to index-tip distance for the
	// frame-corner pose, keeping it disjoint from a pinch.
	MinSpread float64

	// HoldDuration is how long the two-hand frame pose must be held
	// continuously before a photo capture fires.
	HoldDuration time.Duration
}

// DefaultConfig returns the default gesture tuning.
func DefaultConfig() Config {
	return Config{
		PinchThreshold:      0.08,
		ZoomDeadZone:        0.01,
		ZoomGain:            2.5,
		RotateDeadZone:      0.5,
		RotateGain:          2.0,
		FrameAngleTolerance: 25,
		MinSpread:           0.15,
		HoldDuration:        time.Second,
	}
}
