package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arvindh/mudra/internal/app"
	"github.com/arvindh/mudra/internal/capture"
	"github.com/arvindh/mudra/internal/detector"
	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/server"
	"github.com/arvindh/mudra/internal/store"
)

func TestE2E_PhotoGalleryWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	capturer, err := photo.NewCapturer(filepath.Join(tmpDir, "photos"), s.Photos())
	if err != nil {
		t.Fatalf("photo.NewCapturer() error = %v", err)
	}

	srv := server.New(server.Config{Store: s, Capturer: capturer})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// Simulate a pipeline capture by inserting a record directly.
	p := &store.Photo{
		ID:              uuid.New().String(),
		OriginalFile:    "photo_20250101_120000_original.jpg",
		TransformedFile: "photo_20250101_120000_transformed.jpg",
		Zoom:            1.4,
		Rotation:        8.0,
		TakenAt:         time.Now(),
	}
	if err := s.Photos().Create(p); err != nil {
		t.Fatalf("failed to insert photo: %v", err)
	}

	t.Run("ListPhotos", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/photos")
		if err != nil {
			t.Fatalf("list photos error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var listResp struct {
			Photos []struct {
				ID             string  `json:"id"`
				TransformedURL string  `json:"transformed_url"`
				Zoom           float64 `json:"zoom"`
			} `json:"photos"`
		}
		json.NewDecoder(resp.Body).Decode(&listResp)

		if len(listResp.Photos) != 1 {
			t.Fatalf("expected 1 photo, got %d", len(listResp.Photos))
		}
		if listResp.Photos[0].ID != p.ID {
			t.Errorf("photo id = %s, want %s", listResp.Photos[0].ID, p.ID)
		}
		if !strings.HasPrefix(listResp.Photos[0].TransformedURL, "/photos/") {
			t.Errorf("transformed_url = %q, want /photos/ prefix", listResp.Photos[0].TransformedURL)
		}
	})

	t.Run("GetPhoto", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/photos/" + p.ID)
		if err != nil {
			t.Fatalf("get photo error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("DeletePhoto", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/photos/"+p.ID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete photo error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}

		resp, _ = client.Get(ts.URL + "/api/photos/" + p.ID)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("get after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
		resp.Body.Close()
	})
}

func TestE2E_SettingsWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})

	srv := server.New(server.Config{Store: s, Tuner: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	t.Run("ReadDefaults", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/settings")
		if err != nil {
			t.Fatalf("get settings error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var settings struct {
			Enabled        bool    `json:"enabled"`
			PinchThreshold float64 `json:"pinch_threshold"`
		}
		json.NewDecoder(resp.Body).Decode(&settings)

		if !settings.Enabled {
			t.Error("gesture control should default to enabled")
		}
		if settings.PinchThreshold <= 0 {
			t.Error("pinch threshold should be positive")
		}
	})

	t.Run("UpdateTuning", func(t *testing.T) {
		req, _ := http.NewRequest(
			http.MethodPut,
			ts.URL+"/api/settings",
			strings.NewReader(`{"pinch_threshold": 0.11, "enabled": false}`),
		)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("update settings error = %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		if application.GestureConfig().PinchThreshold != 0.11 {
			t.Errorf("pinch threshold = %f, want 0.11", application.GestureConfig().PinchThreshold)
		}
		if application.Enabled() {
			t.Error("gesture control should be disabled after update")
		}
	})

	t.Run("HealthStillOK", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed: %d", resp.StatusCode)
		}
	})
}
