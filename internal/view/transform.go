// Package view accumulates gesture deltas into a display transform and
// renders it onto captured frames.
package view

import "sync"

// Config holds the limits and smoothing factors for the view transform.
type Config struct {
	MinZoom     float64
	MaxZoom     float64
	MinRotation float64 // degrees
	MaxRotation float64 // degrees

	// Smoothing factors blend new targets into the current value:
	// value = (1-s)*value + s*target. Lower is smoother.
	ZoomSmoothing     float64
	RotationSmoothing float64
}

// DefaultConfig returns the default view limits: 1x-3x zoom and ±45 degrees
// of rotation, with gentle smoothing.
func DefaultConfig() Config {
	return Config{
		MinZoom:           1.0,
		MaxZoom:           3.0,
		MinRotation:       -45,
		MaxRotation:       45,
		ZoomSmoothing:     0.2,
		RotationSmoothing: 0.15,
	}
}

// Transform is the current zoom/rotation view state. It is written by the
// pipeline goroutine and read by the server and tray, so access is locked.
type Transform struct {
	cfg      Config
	mu       sync.RWMutex
	zoom     float64
	rotation float64
}

// NewTransform creates an identity Transform with the given limits.
func NewTransform(cfg Config) *Transform {
	return &Transform{
		cfg:  cfg,
		zoom: 1.0,
	}
}

// ApplyZoom folds a multiplicative zoom factor into the transform,
// smoothed and clamped to the configured range.
func (t *Transform) ApplyZoom(scale float64) {
	if scale <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	target := t.zoom * scale
	t.zoom = clamp((1-t.cfg.ZoomSmoothing)*t.zoom+t.cfg.ZoomSmoothing*target, t.cfg.MinZoom, t.cfg.MaxZoom)
}

// ApplyRotation folds a rotation delta in degrees into the transform,
// smoothed and clamped to the configured range.
func (t *Transform) ApplyRotation(degrees float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	target := t.rotation + degrees
	t.rotation = clamp((1-t.cfg.RotationSmoothing)*t.rotation+t.cfg.RotationSmoothing*target, t.cfg.MinRotation, t.cfg.MaxRotation)
}

// Reset returns the transform to identity.
func (t *Transform) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.zoom = 1.0
	t.rotation = 0
}

// Zoom returns the current zoom scale.
func (t *Transform) Zoom() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.zoom
}

// Rotation returns the current rotation in degrees.
func (t *Transform) Rotation() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rotation
}

// Snapshot returns the current zoom and rotation together.
func (t *Transform) Snapshot() (zoom, rotation float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.zoom, t.rotation
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
