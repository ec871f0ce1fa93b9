// Package capture provides video frame sources and their supervision.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// DefaultFPS is the idle capture rate. The pipeline raises it while
	// motion is in front of the camera.
	DefaultFPS = 5

	// Capture resolution. 640x480 keeps JPEG encoding and the landmark
	// model fast enough for the active frame rate.
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when reading from a source that has not been
// opened or has been closed.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is a video frame source: a local webcam, a network stream, or a
// test fake.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// videoCamera captures from a local device or a stream URL through GoCV.
type videoCamera struct {
	source any // device ID (int) or stream URL (string)

	mu      sync.Mutex
	capture *gocv.VideoCapture
	open    bool
	fps     int
}

// NewCamera returns a Camera for a local device ID.
func NewCamera(deviceID int) Camera {
	return &videoCamera{source: deviceID, fps: DefaultFPS}
}

// NewStreamCamera returns a Camera for a network stream URL, such as an
// RTMP feed from a phone.
func NewStreamCamera(url string) Camera {
	return &videoCamera{source: url, fps: DefaultFPS}
}

// Open starts capture at the default resolution and the current FPS. Open
// on an already open camera is a no-op.
func (c *videoCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.source)
	if err != nil {
		return fmt.Errorf("open video source %v: %w", c.source, err)
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.capture = capture
	c.open = true
	return nil
}

// Close stops capture and releases the device.
func (c *videoCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		c.open = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.open = false
	return err
}

// ReadFrame grabs one frame. The caller owns the returned Mat and must
// close it.
func (c *videoCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if !c.capture.Read(&mat) {
		mat.Close()
		return nil, fmt.Errorf("read frame from %v failed", c.source)
	}
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("empty frame from %v", c.source)
	}
	return &mat, nil
}

// SetFPS changes the capture rate, applying it to the device immediately
// when open. Non-positive values are ignored.
func (c *videoCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *videoCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *videoCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
