package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrPlaybackDone is returned by MockCamera when a non-looping frame
// sequence has been fully consumed.
var ErrPlaybackDone = errors.New("frame sequence exhausted")

// MockCamera plays back a scripted frame sequence for tests. Unlike a real
// device it tracks the requested FPS so pipeline rate changes can be
// observed, and it can be told to fail reads on demand.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	pos     int
	loop    bool
	open    bool
	fps     int
	readErr error
}

// NewMockCamera returns a camera that replays frames in order. When loop is
// true the sequence restarts after the last frame.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		loop:   loop,
		fps:    DefaultFPS,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.pos = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next scripted frame so callers can close
// it without touching the originals.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil, ErrCameraNotOpen
	}
	if c.readErr != nil {
		return nil, c.readErr
	}
	if len(c.frames) == 0 {
		return nil, ErrPlaybackDone
	}
	if c.pos >= len(c.frames) {
		if !c.loop {
			return nil, ErrPlaybackDone
		}
		c.pos = 0
	}

	frame := c.frames[c.pos].Clone()
	c.pos++
	return &frame, nil
}

func (c *MockCamera) SetFPS(fps int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fps > 0 {
		c.fps = fps
	}
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SetFrames replaces the frame sequence and restarts playback.
func (c *MockCamera) SetFrames(frames []*gocv.Mat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.pos = 0
}

// SetReadError makes subsequent ReadFrame calls fail with err until cleared
// with nil.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// Reset restarts playback from the first frame.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = 0
}
