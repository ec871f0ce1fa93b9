package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MediaPipeDetector runs the hand landmark model in a Python sidecar
// process. Each frame goes out as a 4-byte big-endian length followed by
// JPEG bytes; the service answers with one JSON object per line. The
// process starts on the first Detect call and is stopped after the
// configured idle timeout so an idle preview does not pin the model in
// memory.
type MediaPipeDetector struct {
	cfg Config

	mu        sync.Mutex
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	running   bool
	idleTimer *time.Timer
}

// NewMediaPipeDetector verifies the service script can be located and
// returns a detector that will launch it lazily.
func NewMediaPipeDetector(cfg Config) (*MediaPipeDetector, error) {
	if cfg.MaxHands <= 0 {
		cfg.MaxHands = DefaultConfig().MaxHands
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultConfig().IdleTimeout
	}
	if resolveScript(cfg.ScriptPath) == "" {
		return nil, fmt.Errorf("hand landmark service script not found")
	}
	return &MediaPipeDetector{cfg: cfg}, nil
}

// Detect sends one frame to the service and decodes the hands it reports.
// Incomplete hands and hands with non-finite coordinates are dropped, so
// callers only ever see full 21-point landmark sets.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureRunning(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	data := buf.GetBytes()

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(data)))
	if _, err := d.stdin.Write(header[:]); err != nil {
		buf.Close()
		d.stop()
		return nil, fmt.Errorf("write frame header: %w", err)
	}
	_, err = d.stdin.Write(data)
	buf.Close()
	if err != nil {
		d.stop()
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.stop()
		return nil, fmt.Errorf("read detection result: %w", err)
	}

	var result struct {
		Hands []wireHand `json:"hands"`
	}
	if err := json.Unmarshal([]byte(line), &result); err != nil {
		return nil, fmt.Errorf("decode detection result: %w", err)
	}

	hands := make([]HandLandmarks, 0, len(result.Hands))
	for _, wh := range result.Hands {
		if len(hands) == d.cfg.MaxHands {
			break
		}
		if h, ok := wh.landmarks(); ok {
			hands = append(hands, h)
		}
	}

	d.touchIdleTimer()
	return hands, nil
}

// Close terminates the service process if it is running.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

// ensureRunning launches the sidecar with the configured model thresholds.
// Called with d.mu held.
func (d *MediaPipeDetector) ensureRunning() error {
	if d.running {
		return nil
	}

	script := resolveScript(d.cfg.ScriptPath)
	if script == "" {
		return fmt.Errorf("hand landmark service script not found")
	}
	python := d.cfg.PythonPath
	if python == "" {
		python = resolvePython()
	}

	cmd := exec.Command(python, script,
		"--max-hands", strconv.Itoa(d.cfg.MaxHands),
		"--min-detection-confidence", strconv.FormatFloat(d.cfg.MinDetectionConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.cfg.MinTrackingConfidence, 'f', -1, 64),
	)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start landmark service: %w", err)
	}

	d.cmd = cmd
	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.running = true
	return nil
}

// stop shuts the sidecar down. Called with d.mu held.
func (d *MediaPipeDetector) stop() error {
	if !d.running {
		return nil
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	if d.stdin != nil {
		d.stdin.Close()
	}
	err := d.cmd.Wait()
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.running = false
	return err
}

// touchIdleTimer pushes the idle shutdown out by IdleTimeout. Called with
// d.mu held.
func (d *MediaPipeDetector) touchIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(d.cfg.IdleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.stop()
	})
}

const serviceScript = "hand_landmark_service.py"

// resolveScript finds the service script, preferring an explicit override,
// then the working directory, the binary's directory, and the user data dir.
func resolveScript(override string) string {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override
		}
		return ""
	}

	var dirs []string
	dirs = append(dirs, "scripts", filepath.Join("..", "scripts"))
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "scripts"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".mudra", "scripts"))
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, serviceScript)
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

// resolvePython prefers a project virtualenv interpreter and falls back to
// whatever python3 is on PATH.
func resolvePython() string {
	var dirs []string
	dirs = append(dirs, "venv", filepath.Join("..", "venv"))
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "venv"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".mudra", "venv"))
	}

	for _, dir := range dirs {
		path := filepath.Join(dir, "bin", "python")
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return "python3"
}

// wireHand is the per-hand JSON shape emitted by the service.
type wireHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

// landmarks converts a wire hand into HandLandmarks. A hand that does not
// carry all 21 points, or that carries non-finite coordinates, is reported
// as not ok: zero-filling missing points would fabricate a hand with thumb
// and index tips coinciding at the origin, which reads as a pinch.
func (w wireHand) landmarks() (HandLandmarks, bool) {
	if len(w.Points) != NumLandmarks {
		return HandLandmarks{}, false
	}

	h := HandLandmarks{
		Handedness: w.Handedness,
		Score:      w.Score,
	}
	copy(h.Points[:], w.Points)
	if !h.IsValid() {
		return HandLandmarks{}, false
	}
	return h, true
}
