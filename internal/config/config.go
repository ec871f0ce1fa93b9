// Package config loads application configuration from a .env file,
// environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/arvindh/mudra/internal/gesture"
)

// Config holds all application settings.
type Config struct {
	// CameraID selects the local capture device. Ignored when StreamURL
	// is set.
	CameraID int
	// StreamURL is an optional network camera source (RTMP/RTSP/HTTP).
	StreamURL string
	// ListenAddr is the HTTP server bind address.
	ListenAddr string
	// DataDir is the root for the database and photo files.
	DataDir string
	// StaticDir serves the web viewer when non-empty.
	StaticDir string
	// MotionThreshold is the pixel-change percentage that wakes the
	// pipeline out of idle mode.
	MotionThreshold float64
	// Tray enables the system tray icon.
	Tray bool

	// Gesture holds the interpreter tuning.
	Gesture gesture.Config
}

// Default returns the built-in configuration.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	return Config{
		CameraID:        0,
		ListenAddr:      ":8420",
		DataDir:         filepath.Join(home, ".mudra"),
		MotionThreshold: 1.0,
		Tray:            true,
		Gesture:         gesture.DefaultConfig(),
	}
}

// Load builds the configuration: defaults, then .env, then environment
// variables, then command-line flags.
func Load(args []string) (Config, error) {
	// A missing .env file is fine; explicit settings come from the
	// environment or flags.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}

	cfg := Default()
	cfg.applyEnv()

	if err := cfg.applyFlags(args); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DatabasePath returns the SQLite file location under DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

// PhotoDir returns the photo directory under DataDir.
func (c Config) PhotoDir() string {
	return filepath.Join(c.DataDir, "photos")
}

// applyEnv overlays MUDRA_* environment variables.
func (c *Config) applyEnv() {
	c.CameraID = envInt("MUDRA_CAMERA_ID", c.CameraID)
	c.StreamURL = envString("MUDRA_STREAM_URL", c.StreamURL)
	c.ListenAddr = envString("MUDRA_LISTEN_ADDR", c.ListenAddr)
	c.DataDir = envString("MUDRA_DATA_DIR", c.DataDir)
	c.StaticDir = envString("MUDRA_STATIC_DIR", c.StaticDir)
	c.MotionThreshold = envFloat("MUDRA_MOTION_THRESHOLD", c.MotionThreshold)
	c.Tray = envBool("MUDRA_TRAY", c.Tray)

	c.Gesture.PinchThreshold = envFloat("MUDRA_PINCH_THRESHOLD", c.Gesture.PinchThreshold)
	c.Gesture.ZoomDeadZone = envFloat("MUDRA_ZOOM_DEAD_ZONE", c.Gesture.ZoomDeadZone)
	c.Gesture.ZoomGain = envFloat("MUDRA_ZOOM_GAIN", c.Gesture.ZoomGain)
	c.Gesture.RotateDeadZone = envFloat("MUDRA_ROTATE_DEAD_ZONE", c.Gesture.RotateDeadZone)
	c.Gesture.RotateGain = envFloat("MUDRA_ROTATE_GAIN", c.Gesture.RotateGain)
	c.Gesture.FrameAngleTolerance = envFloat("MUDRA_FRAME_ANGLE_TOLERANCE", c.Gesture.FrameAngleTolerance)
	c.Gesture.MinSpread = envFloat("MUDRA_MIN_SPREAD", c.Gesture.MinSpread)
	c.Gesture.HoldDuration = envDuration("MUDRA_HOLD_DURATION", c.Gesture.HoldDuration)
}

// applyFlags overlays command-line flags. args excludes the program name.
func (c *Config) applyFlags(args []string) error {
	fs := flag.NewFlagSet("mudra", flag.ContinueOnError)

	fs.IntVar(&c.CameraID, "camera", c.CameraID, "camera device ID")
	fs.StringVar(&c.StreamURL, "stream-url", c.StreamURL, "network camera URL (overrides -camera)")
	fs.StringVar(&c.ListenAddr, "listen", c.ListenAddr, "HTTP listen address")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "data directory for database and photos")
	fs.StringVar(&c.StaticDir, "static-dir", c.StaticDir, "directory of web viewer files")
	fs.Float64Var(&c.MotionThreshold, "motion-threshold", c.MotionThreshold, "motion detection threshold (percent pixels changed)")
	fs.BoolVar(&c.Tray, "tray", c.Tray, "show the system tray icon")
	fs.DurationVar(&c.Gesture.HoldDuration, "hold-duration", c.Gesture.HoldDuration, "photo gesture hold duration")

	return fs.Parse(args)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
