package gesture

// EventType identifies the kind of gesture event.
type EventType string

const (
	// EventZoom carries a multiplicative zoom factor (>1 hands moved apart,
	// <1 hands moved together).
	EventZoom EventType = "zoom"
	// EventRotate carries a rotation delta in degrees.
	EventRotate EventType = "rotate"
	// EventPhotoCapture fires once when the photo-frame pose has been held
	// for the configured duration.
	EventPhotoCapture EventType = "photo_capture"
)

// Event is a discrete gesture emitted for one frame. Scale is set for
// EventZoom, Degrees for EventRotate; EventPhotoCapture carries no payload.
type Event struct {
	Type    EventType `json:"type"`
	Scale   float64   `json:"scale,omitempty"`
	Degrees float64   `json:"degrees,omitempty"`
}
