package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/arvindh/mudra/internal/detector"
	"github.com/arvindh/mudra/internal/gesture"
	"github.com/arvindh/mudra/internal/view"
)

// runPipeline is the frame-synchronous loop that drives the whole system.
// It is the only goroutine that touches the interpreter.
//
// Per frame:
//  1. Pick up any pending gesture configuration change.
//  2. Read a frame from the camera.
//  3. Motion check; switch between idle (5 FPS) and active (15 FPS) modes.
//  4. In active mode with gesture control enabled, detect hands and
//     interpret gestures. Otherwise the interpreter sees no hands, which
//     clears its baselines and hold timer.
//  5. Apply zoom/rotate events to the view transform, render the
//     transformed frame, capture a photo if triggered, and publish the
//     frame for the preview stream.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	interp := gesture.NewInterpreter(a.GestureConfig())
	seenRevision := a.configRevision()

	// A supervised camera reopens behind our back; its generation counter
	// tells us when the motion baseline belongs to a dead stream.
	genSrc, hasGen := a.camera.(generationSource)
	var seenGen uint64
	if hasGen {
		seenGen = genSrc.Generation()
	}

	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if rev := a.configRevision(); rev != seenRevision {
			seenRevision = rev
			interp = gesture.NewInterpreter(a.GestureConfig())
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			log.Printf("Error reading frame: %v", err)
			continue
		}

		if hasGen {
			if gen := genSrc.Generation(); gen != seenGen {
				seenGen = gen
				a.motion.Reset()
			}
		}

		motionDetected, _ := a.motion.Detect(frame)
		if motionDetected {
			lastMotionTime = time.Now()

			if !activeMode {
				activeMode = true
				a.camera.SetFPS(ActiveFPS)
				ticker.Reset(time.Second / time.Duration(ActiveFPS))
				log.Println("Switched to active mode")
			}
		} else if activeMode {
			if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
				activeMode = false
				a.camera.SetFPS(IdleFPS)
				ticker.Reset(time.Second / time.Duration(IdleFPS))
				log.Println("Switched to idle mode")
			}
		}

		now := time.Now()
		var hands []detector.HandLandmarks
		if a.Enabled() && activeMode {
			hands, err = a.detector.Detect(frame)
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				hands = nil
			}
		}

		wantPhoto := false
		for _, ev := range interp.Interpret(hands, now) {
			switch ev.Type {
			case gesture.EventZoom:
				a.transform.ApplyZoom(ev.Scale)
				a.publish("zoom", ev)
			case gesture.EventRotate:
				a.transform.ApplyRotation(ev.Degrees)
				a.publish("rotate", ev)
			case gesture.EventPhotoCapture:
				wantPhoto = true
			}
			a.setLastGesture(string(ev.Type))
		}

		zoom, rotation := a.transform.Snapshot()
		transformed := view.Render(frame, zoom, rotation)

		if wantPhoto {
			a.capturePhoto(frame, &transformed, zoom, rotation)
		}

		a.setLatest(encodeJPEG(&transformed), hands, now)

		transformed.Close()
		frame.Close()
	}
}

// capturePhoto persists the current frame pair and announces it.
func (a *App) capturePhoto(original, transformed *gocv.Mat, zoom, rotation float64) {
	if a.capturer == nil {
		return
	}

	p, err := a.capturer.Capture(original, transformed, zoom, rotation)
	if err != nil {
		log.Printf("Error capturing photo: %v", err)
		return
	}

	log.Printf("Photo captured: %s", p.ID)
	a.publish("photo_captured", map[string]any{
		"id":              p.ID,
		"original_url":    "/photos/" + p.OriginalFile,
		"transformed_url": "/photos/" + p.TransformedFile,
		"zoom":            p.Zoom,
		"rotation":        p.Rotation,
	})
}

// encodeJPEG encodes a frame for the preview stream. Returns nil on failure.
func encodeJPEG(frame *gocv.Mat) []byte {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return nil
	}
	defer buf.Close()

	// The native buffer is freed on Close, so copy it out.
	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out
}

// generationSource is implemented by capture.Supervisor.
type generationSource interface {
	Generation() uint64
}

func (a *App) configRevision() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfgRevision
}
