package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// ConnState is the connection state of a supervised camera.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateStreaming    ConnState = "streaming"
	StateReconnecting ConnState = "reconnecting"
)

// ErrNotStreaming is returned when reading from a supervisor that has no
// established connection.
var ErrNotStreaming = errors.New("camera is not streaming")

// SupervisorConfig holds retry and watchdog settings.
type SupervisorConfig struct {
	// MaxRetries bounds open attempts per connect/reconnect cycle.
	MaxRetries int
	// RetryDelay is the wait between attempts.
	RetryDelay time.Duration
	// HangTimeout is how long reads may fail before the device is
	// considered hung and fully reopened. Cameras on flaky USB buses and
	// RTMP streams both exhibit this: the handle stays "open" but frames
	// stop arriving.
	HangTimeout time.Duration
}

// DefaultSupervisorConfig returns the default retry and watchdog settings.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		MaxRetries:  5,
		RetryDelay:  time.Second,
		HangTimeout: 5 * time.Second,
	}
}

// Supervisor wraps a Camera with an explicit connection state machine:
// Disconnected -> Connecting -> Streaming -> Reconnecting. It implements
// Camera itself so the pipeline can use it in place of the raw source.
type Supervisor struct {
	cam Camera
	cfg SupervisorConfig

	mu        sync.Mutex
	state     ConnState
	lastFrame time.Time
	gen       uint64
}

// NewSupervisor creates a Supervisor around the given camera.
func NewSupervisor(cam Camera, cfg SupervisorConfig) *Supervisor {
	return &Supervisor{
		cam:   cam,
		cfg:   cfg,
		state: StateDisconnected,
	}
}

// State returns the current connection state.
func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation counts established connections. It changes every time the
// supervisor opens or reopens the device, so consumers holding per-stream
// state (such as a motion baseline) can notice a reconnect and reset.
func (s *Supervisor) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Open establishes the connection, retrying up to MaxRetries times.
func (s *Supervisor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStreaming {
		return nil
	}
	if s.state == StateConnecting || s.state == StateReconnecting {
		return errors.New("camera connect already in progress")
	}
	return s.connectLocked(StateConnecting)
}

// connectLocked runs one bounded connect cycle, entering via the given
// transitional state. Callers hold s.mu; the lock is released across the
// retry delays so State and Close stay responsive during a slow reconnect.
func (s *Supervisor) connectLocked(via ConnState) error {
	s.state = via

	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			s.mu.Unlock()
			time.Sleep(s.cfg.RetryDelay)
			s.mu.Lock()
			if s.state != via {
				// Close raced in during the delay.
				return ErrNotStreaming
			}
		}

		if err := s.cam.Open(); err != nil {
			lastErr = err
			continue
		}

		s.state = StateStreaming
		s.lastFrame = time.Now()
		s.gen++
		return nil
	}

	s.state = StateDisconnected
	return fmt.Errorf("camera connect failed after %d attempts: %w", s.cfg.MaxRetries+1, lastErr)
}

// ReadFrame reads one frame. Transient read failures inside the hang window
// are returned as-is; once no frame has arrived for HangTimeout, the device
// is closed and reopened through the Reconnecting state.
func (s *Supervisor) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStreaming && s.state != StateReconnecting {
		return nil, ErrNotStreaming
	}

	frame, err := s.cam.ReadFrame()
	if err == nil {
		s.state = StateStreaming
		s.lastFrame = time.Now()
		return frame, nil
	}

	if time.Since(s.lastFrame) < s.cfg.HangTimeout {
		return nil, err
	}

	// Hung: full reopen.
	s.cam.Close()
	if rerr := s.connectLocked(StateReconnecting); rerr != nil {
		return nil, rerr
	}

	frame, err = s.cam.ReadFrame()
	if err != nil {
		return nil, err
	}
	s.lastFrame = time.Now()
	return frame, nil
}

// Close shuts the connection down and returns to Disconnected.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateDisconnected
	return s.cam.Close()
}

// SetFPS passes through to the underlying camera.
func (s *Supervisor) SetFPS(fps int) {
	s.cam.SetFPS(fps)
}

// FPS passes through to the underlying camera.
func (s *Supervisor) FPS() int {
	return s.cam.FPS()
}

// IsOpen reports whether the supervisor currently has a live connection.
func (s *Supervisor) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateStreaming || s.state == StateReconnecting
}
