package gesture

import (
	"time"

	"github.com/arvindh/mudra/internal/detector"
)

// Interpreter turns per-frame hand landmarks into gesture events.
//
// All state is frame-local except two pieces retained across frames: the
// previous-frame distance/angle baseline for zoom and rotation, and the hold
// timer for the photo gesture. Both reset the instant their qualifying
// configuration breaks, including on missing or malformed landmark data.
//
// Interpret must be called from a single goroutine; the surrounding capture
// loop owns the lifecycle.
type Interpreter struct {
	cfg Config

	// Zoom/rotate baseline from the last frame with two pinched hands.
	baseline *baseline

	// Photo-frame hold state. holdStart is zero when the pose is not held.
	// armed goes false once a capture fires and stays false until the pose
	// fully breaks, so holding past the threshold triggers exactly once.
	holdStart time.Time
	armed     bool
}

type baseline struct {
	distance float64
	angle    float64
}

// NewInterpreter creates an Interpreter with the given tuning.
func NewInterpreter(cfg Config) *Interpreter {
	return &Interpreter{
		cfg:   cfg,
		armed: true,
	}
}

// Config returns the interpreter's tuning.
func (it *Interpreter) Config() Config {
	return it.cfg
}

// Reset clears all retained state, as if no frames had been seen.
func (it *Interpreter) Reset() {
	it.baseline = nil
	it.holdStart = time.Time{}
	it.armed = true
}

// Interpret processes one frame's hands and returns zero or more gesture
// events. now is the frame timestamp; passing it in keeps hold-duration
// behavior deterministic under test.
func (it *Interpreter) Interpret(hands []detector.HandLandmarks, now time.Time) []Event {
	valid := validHands(hands)

	var events []Event
	events = append(events, it.interpretZoomRotate(valid)...)
	if e, ok := it.interpretPhotoFrame(valid, now); ok {
		events = append(events, e)
	}
	return events
}

// interpretZoomRotate handles the two-hand pinch gesture. A baseline is
// established on the first qualifying frame and emits nothing; subsequent
// qualifying frames emit deltas beyond the dead-zones. Any non-qualifying
// frame clears the baseline.
func (it *Interpreter) interpretZoomRotate(hands []*detector.HandLandmarks) []Event {
	if len(hands) != 2 {
		it.baseline = nil
		return nil
	}

	p0 := pinchOf(hands[0], it.cfg.PinchThreshold)
	p1 := pinchOf(hands[1], it.cfg.PinchThreshold)
	if !p0.Pinched || !p1.Pinched {
		it.baseline = nil
		return nil
	}

	dist := detector.Distance2D(p0.Midpoint, p1.Midpoint)
	angle := angleDeg(p0.Midpoint, p1.Midpoint)

	prev := it.baseline
	it.baseline = &baseline{distance: dist, angle: angle}

	if prev == nil {
		// Re-acquisition frame: baseline only, no events.
		return nil
	}

	var events []Event

	if dd := dist - prev.distance; dd > it.cfg.ZoomDeadZone || dd < -it.cfg.ZoomDeadZone {
		scale := 1 + dd*it.cfg.ZoomGain
		if scale < 0.1 {
			scale = 0.1
		}
		events = append(events, Event{Type: EventZoom, Scale: scale})
	}

	if ad := normalizeAngle(angle - prev.angle); ad > it.cfg.RotateDeadZone || ad < -it.cfg.RotateDeadZone {
		events = append(events, Event{Type: EventRotate, Degrees: ad * it.cfg.RotateGain})
	}

	return events
}

// interpretPhotoFrame handles the two-hand L-shape rectangle pose. The hold
// timer runs while the pose persists; breaking it resets the timer and
// re-arms the trigger.
func (it *Interpreter) interpretPhotoFrame(hands []*detector.HandLandmarks, now time.Time) (Event, bool) {
	holding := len(hands) == 2 && isFrameCorner(hands[0], it.cfg) && isFrameCorner(hands[1], it.cfg)

	if !holding {
		it.holdStart = time.Time{}
		it.armed = true
		return Event{}, false
	}

	if it.holdStart.IsZero() {
		it.holdStart = now
		return Event{}, false
	}

	if it.armed && now.Sub(it.holdStart) >= it.cfg.HoldDuration {
		it.armed = false
		return Event{Type: EventPhotoCapture}, true
	}

	return Event{}, false
}

// validHands filters out hands with missing or non-finite landmark data.
// Malformed input is indistinguishable from "no hand" downstream.
func validHands(hands []detector.HandLandmarks) []*detector.HandLandmarks {
	out := make([]*detector.HandLandmarks, 0, len(hands))
	for i := range hands {
		if hands[i].IsValid() {
			out = append(out, &hands[i])
		}
	}
	return out
}
