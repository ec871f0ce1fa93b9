// Package app orchestrates the gesture camera pipeline: capture, hand
// detection, gesture interpretation, view transformation and photo capture.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/arvindh/mudra/internal/capture"
	"github.com/arvindh/mudra/internal/detector"
	"github.com/arvindh/mudra/internal/gesture"
	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/view"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate during active detection.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// EventPublisher receives gesture and photo events from the pipeline.
// server.Hub satisfies it.
type EventPublisher interface {
	Publish(eventType string, data any)
}

// Config holds configuration options for the application.
type Config struct {
	Camera        capture.Camera
	Detector      detector.Detector
	Capturer      *photo.Capturer
	Publisher     EventPublisher
	MotionThresh  float64
	GestureConfig gesture.Config
	ViewConfig    view.Config
}

// App is the main application. It owns the camera and the interpreter;
// all gesture state is touched only from the pipeline goroutine.
type App struct {
	camera    capture.Camera
	motion    *capture.MotionDetector
	detector  detector.Detector
	transform *view.Transform
	capturer  *photo.Capturer
	publisher EventPublisher

	mu          sync.RWMutex
	enabled     bool
	gestureCfg  gesture.Config
	cfgRevision uint64
	lastGesture string
	onGesture   func(name string)
	latestJPEG  []byte
	latestHands []detector.HandLandmarks
	detectedAt  time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	gestureCfg := config.GestureConfig
	if gestureCfg.PinchThreshold == 0 {
		gestureCfg = gesture.DefaultConfig()
	}

	viewCfg := config.ViewConfig
	if viewCfg.MaxZoom == 0 {
		viewCfg = view.DefaultConfig()
	}

	a := &App{
		camera:     config.Camera,
		motion:     capture.NewMotionDetector(motionThreshold),
		detector:   config.Detector,
		transform:  view.NewTransform(viewCfg),
		capturer:   config.Capturer,
		publisher:  config.Publisher,
		enabled:    true,
		gestureCfg: gestureCfg,
	}

	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	return a
}

// SetEnabled enables or disables gesture interpretation. The preview
// stream keeps running either way.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled != enabled {
		a.enabled = enabled
		a.cfgRevision++
	}
}

// Enabled returns whether gesture interpretation is currently enabled.
func (a *App) Enabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// GestureConfig returns the current gesture tuning.
func (a *App) GestureConfig() gesture.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.gestureCfg
}

// UpdateGestureConfig replaces the gesture tuning. The pipeline picks the
// new configuration up at the start of its next frame.
func (a *App) UpdateGestureConfig(cfg gesture.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gestureCfg = cfg
	a.cfgRevision++
}

// ResetView restores the identity view transform.
func (a *App) ResetView() {
	a.transform.Reset()
}

// Transform returns the live view transform.
func (a *App) Transform() *view.Transform {
	return a.transform
}

// LastGesture returns the most recently interpreted gesture type, or ""
// if none has fired yet.
func (a *App) LastGesture() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastGesture
}

// OnGesture registers a callback invoked from the pipeline goroutine every
// time a gesture event fires. The tray uses it to show the last gesture.
func (a *App) OnGesture(fn func(name string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onGesture = fn
}

// LatestFrame returns the current transformed frame encoded as JPEG.
// It implements server.FrameSource.
func (a *App) LatestFrame() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latestJPEG == nil {
		return nil, false
	}
	return a.latestJPEG, true
}

// LatestHands returns the most recent detection result and its time.
// It implements server.FrameSource.
func (a *App) LatestHands() ([]detector.HandLandmarks, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latestHands, a.detectedAt
}

// SetDetector sets the hand detector implementation to use. It must be
// called before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Start opens the camera and begins the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	log.Println("Gesture pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh = nil
	a.doneCh = nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Gesture pipeline stopped")
}

// publish forwards an event when a publisher is configured.
func (a *App) publish(eventType string, data any) {
	if a.publisher != nil {
		a.publisher.Publish(eventType, data)
	}
}

// setLatest stores the newest preview frame and detection result.
func (a *App) setLatest(jpeg []byte, hands []detector.HandLandmarks, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if jpeg != nil {
		a.latestJPEG = jpeg
	}
	a.latestHands = hands
	a.detectedAt = at
}

func (a *App) setLastGesture(name string) {
	a.mu.Lock()
	a.lastGesture = name
	fn := a.onGesture
	a.mu.Unlock()

	if fn != nil {
		fn(name)
	}
}
