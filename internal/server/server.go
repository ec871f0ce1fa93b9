// Package server provides the HTTP preview and gallery server for the
// gesture camera.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/arvindh/mudra/internal/detector"
	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/server/api"
	"github.com/arvindh/mudra/internal/store"
)

// FrameSource exposes the pipeline's most recent output to HTTP handlers.
// Handlers never read the camera directly; the pipeline owns the device.
type FrameSource interface {
	// LatestFrame returns the current transformed frame encoded as JPEG.
	// ok is false until the pipeline has produced a frame.
	LatestFrame() (jpeg []byte, ok bool)
	// LatestHands returns the most recent detection result and its time.
	LatestHands() ([]detector.HandLandmarks, time.Time)
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Frames    FrameSource
	Capturer  *photo.Capturer
	Tuner     api.GestureTuner
	Hub       *Hub
}

// Server represents the HTTP server for the gesture camera application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Register photo API and gallery files if storage is configured
	if s.config.Store != nil && s.config.Capturer != nil {
		photoHandler := api.NewPhotoHandler(s.config.Store, s.config.Capturer)
		s.mux.Handle("/api/photos", photoHandler)
		s.mux.Handle("/api/photos/", photoHandler)

		fs := http.FileServer(http.Dir(s.config.Capturer.Dir()))
		s.mux.Handle("/photos/", http.StripPrefix("/photos/", fs))
	}

	// Register settings API if a tuner is configured
	if s.config.Tuner != nil {
		settingsHandler := api.NewSettingsHandler(s.config.Store, s.config.Tuner)
		s.mux.Handle("/api/settings", settingsHandler)
	}

	// Register preview endpoints if the pipeline is wired up
	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
		s.mux.Handle("/api/frame", NewFrameHandler(s.config.Frames))
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(s.config.Frames))
	}

	// Register the event feed if a hub is configured
	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
