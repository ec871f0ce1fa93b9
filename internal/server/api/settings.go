package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arvindh/mudra/internal/gesture"
	"github.com/arvindh/mudra/internal/store"
)

// Settings keys used in the store.
const (
	gestureConfigKey = "gesture_config"
	enabledKey       = "gesture_control_enabled"
)

// GestureTuner exposes the live gesture configuration. The pipeline
// implements it; updates take effect on the next frame.
type GestureTuner interface {
	GestureConfig() gesture.Config
	UpdateGestureConfig(gesture.Config)
	Enabled() bool
	SetEnabled(bool)
}

// SettingsHandler handles HTTP requests for gesture tuning settings.
type SettingsHandler struct {
	store *store.Store
	tuner GestureTuner
}

// NewSettingsHandler creates a new SettingsHandler. The store may be nil,
// in which case updates are applied but not persisted.
func NewSettingsHandler(s *store.Store, tuner GestureTuner) *SettingsHandler {
	return &SettingsHandler{store: s, tuner: tuner}
}

// ServeHTTP implements the http.Handler interface.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type settingsResponse struct {
	Enabled             bool    `json:"enabled"`
	PinchThreshold      float64 `json:"pinch_threshold"`
	ZoomDeadZone        float64 `json:"zoom_dead_zone"`
	ZoomGain            float64 `json:"zoom_gain"`
	RotateDeadZone      float64 `json:"rotate_dead_zone"`
	RotateGain          float64 `json:"rotate_gain"`
	FrameAngleTolerance float64 `json:"frame_angle_tolerance"`
	MinSpread           float64 `json:"min_spread"`
	HoldDurationMS      int64   `json:"hold_duration_ms"`
}

// updateSettingsRequest uses pointers so that omitted fields keep their
// current values.
type updateSettingsRequest struct {
	Enabled             *bool    `json:"enabled"`
	PinchThreshold      *float64 `json:"pinch_threshold"`
	ZoomDeadZone        *float64 `json:"zoom_dead_zone"`
	ZoomGain            *float64 `json:"zoom_gain"`
	RotateDeadZone      *float64 `json:"rotate_dead_zone"`
	RotateGain          *float64 `json:"rotate_gain"`
	FrameAngleTolerance *float64 `json:"frame_angle_tolerance"`
	MinSpread           *float64 `json:"min_spread"`
	HoldDurationMS      *int64   `json:"hold_duration_ms"`
}

func toSettingsResponse(enabled bool, cfg gesture.Config) settingsResponse {
	return settingsResponse{
		Enabled:             enabled,
		PinchThreshold:      cfg.PinchThreshold,
		ZoomDeadZone:        cfg.ZoomDeadZone,
		ZoomGain:            cfg.ZoomGain,
		RotateDeadZone:      cfg.RotateDeadZone,
		RotateGain:          cfg.RotateGain,
		FrameAngleTolerance: cfg.FrameAngleTolerance,
		MinSpread:           cfg.MinSpread,
		HoldDurationMS:      cfg.HoldDuration.Milliseconds(),
	}
}

// get handles GET /api/settings.
func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSettingsResponse(h.tuner.Enabled(), h.tuner.GestureConfig()))
}

// update handles PUT /api/settings with a partial update.
func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cfg := h.tuner.GestureConfig()
	if req.PinchThreshold != nil {
		cfg.PinchThreshold = *req.PinchThreshold
	}
	if req.ZoomDeadZone != nil {
		cfg.ZoomDeadZone = *req.ZoomDeadZone
	}
	if req.ZoomGain != nil {
		cfg.ZoomGain = *req.ZoomGain
	}
	if req.RotateDeadZone != nil {
		cfg.RotateDeadZone = *req.RotateDeadZone
	}
	if req.RotateGain != nil {
		cfg.RotateGain = *req.RotateGain
	}
	if req.FrameAngleTolerance != nil {
		cfg.FrameAngleTolerance = *req.FrameAngleTolerance
	}
	if req.MinSpread != nil {
		cfg.MinSpread = *req.MinSpread
	}
	if req.HoldDurationMS != nil {
		cfg.HoldDuration = time.Duration(*req.HoldDurationMS) * time.Millisecond
	}

	if msg := validateConfig(cfg); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	h.tuner.UpdateGestureConfig(cfg)

	enabled := h.tuner.Enabled()
	if req.Enabled != nil {
		enabled = *req.Enabled
		h.tuner.SetEnabled(enabled)
	}

	if err := h.persist(enabled, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist settings")
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(enabled, cfg))
}

// validateConfig rejects tunings the interpreter cannot run with. Dead
// zones may be zero (every qualifying frame emits an event) but never
// negative; everything else must be positive.
func validateConfig(cfg gesture.Config) string {
	switch {
	case cfg.PinchThreshold <= 0:
		return "pinch_threshold must be positive"
	case cfg.HoldDuration <= 0:
		return "hold_duration_ms must be positive"
	case cfg.ZoomDeadZone < 0:
		return "zoom_dead_zone must not be negative"
	case cfg.RotateDeadZone < 0:
		return "rotate_dead_zone must not be negative"
	case cfg.ZoomGain <= 0:
		return "zoom_gain must be positive"
	case cfg.RotateGain <= 0:
		return "rotate_gain must be positive"
	case cfg.FrameAngleTolerance <= 0:
		return "frame_angle_tolerance must be positive"
	case cfg.MinSpread <= 0:
		return "min_spread must be positive"
	}
	return ""
}

// persist stores the full settings snapshot.
func (h *SettingsHandler) persist(enabled bool, cfg gesture.Config) error {
	if h.store == nil {
		return nil
	}

	blob, err := json.Marshal(toSettingsResponse(enabled, cfg))
	if err != nil {
		return err
	}
	if err := h.store.Settings().Set(gestureConfigKey, string(blob)); err != nil {
		return err
	}

	value := "false"
	if enabled {
		value = "true"
	}
	return h.store.Settings().Set(enabledKey, value)
}

// ApplyStoredSettings loads the persisted settings snapshot, if any, and
// applies it to the tuner. Missing settings leave the defaults in place.
func ApplyStoredSettings(s *store.Store, tuner GestureTuner) error {
	blob, err := s.Settings().Get(gestureConfigKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	var saved settingsResponse
	if err := json.Unmarshal([]byte(blob), &saved); err != nil {
		return err
	}

	cfg := tuner.GestureConfig()
	cfg.PinchThreshold = saved.PinchThreshold
	cfg.ZoomDeadZone = saved.ZoomDeadZone
	cfg.ZoomGain = saved.ZoomGain
	cfg.RotateDeadZone = saved.RotateDeadZone
	cfg.RotateGain = saved.RotateGain
	cfg.FrameAngleTolerance = saved.FrameAngleTolerance
	cfg.MinSpread = saved.MinSpread
	cfg.HoldDuration = time.Duration(saved.HoldDurationMS) * time.Millisecond

	tuner.UpdateGestureConfig(cfg)
	tuner.SetEnabled(saved.Enabled)

	return nil
}
