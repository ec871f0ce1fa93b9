package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arvindh/mudra/internal/detector"
	"github.com/arvindh/mudra/internal/gesture"
	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/store"
)

// stubFrames is a FrameSource serving fixed data.
type stubFrames struct {
	mu         sync.Mutex
	frame      []byte
	hands      []detector.HandLandmarks
	detectedAt time.Time
}

func (s *stubFrames) LatestFrame() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil {
		return nil, false
	}
	return s.frame, true
}

func (s *stubFrames) LatestHands() ([]detector.HandLandmarks, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hands, s.detectedAt
}

// stubTuner implements api.GestureTuner.
type stubTuner struct {
	cfg     gesture.Config
	enabled bool
}

func (s *stubTuner) GestureConfig() gesture.Config        { return s.cfg }
func (s *stubTuner) UpdateGestureConfig(c gesture.Config) { s.cfg = c }
func (s *stubTuner) Enabled() bool                        { return s.enabled }
func (s *stubTuner) SetEnabled(v bool)                    { s.enabled = v }

func TestServer_Health(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want %q", resp["status"], "ok")
	}
	if resp["uptime"] == "" {
		t.Error("uptime should be set")
	}
}

func TestServer_Health_MethodNotAllowed(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestServer_Frame(t *testing.T) {
	frames := &stubFrames{frame: []byte("jpeg-bytes")}
	srv := New(Config{Frames: frames})

	req := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Errorf("body = %q, want the frame bytes", rec.Body.String())
	}
}

func TestServer_Frame_NotReady(t *testing.T) {
	srv := New(Config{Frames: &stubFrames{}})

	req := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestServer_Stream(t *testing.T) {
	frames := &stubFrames{frame: []byte("jpeg-bytes")}
	srv := New(Config{Frames: frames})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q, want multipart/x-mixed-replace", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "--frame") {
		t.Error("stream body should contain frame boundaries")
	}
	if !strings.Contains(body, "jpeg-bytes") {
		t.Error("stream body should contain frame data")
	}
}

func TestServer_PhotoRoutes(t *testing.T) {
	dir := t.TempDir()

	s, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	c, err := photo.NewCapturer(filepath.Join(dir, "photos"), s.Photos())
	if err != nil {
		t.Fatalf("failed to create capturer: %v", err)
	}

	srv := New(Config{Store: s, Capturer: c})

	req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/photos status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestServer_PhotoFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	c, err := photo.NewCapturer(filepath.Join(dir, "photos"), s.Photos())
	if err != nil {
		t.Fatalf("failed to create capturer: %v", err)
	}

	name := "photo_20250101_120000_original.jpg"
	if err := os.WriteFile(filepath.Join(c.Dir(), name), []byte("fake jpeg"), 0o644); err != nil {
		t.Fatalf("failed to write photo file: %v", err)
	}

	srv := New(Config{Store: s, Capturer: c})

	req := httptest.NewRequest(http.MethodGet, "/photos/"+name, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /photos/%s status = %d, want %d", name, rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "fake jpeg" {
		t.Error("served file content mismatch")
	}
}

func TestServer_SettingsRoute(t *testing.T) {
	tuner := &stubTuner{cfg: gesture.DefaultConfig(), enabled: true}
	srv := New(Config{Tuner: tuner})

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/settings status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>viewer</html>"), 0o644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}

	srv := New(Config{StaticDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "viewer") {
		t.Error("static index should be served at /")
	}
}

func TestServer_NoRoutesWithoutConfig(t *testing.T) {
	srv := New(Config{})

	for _, path := range []string{"/api/photos", "/api/settings", "/api/stream", "/api/frame"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusNotFound)
		}
	}
}
