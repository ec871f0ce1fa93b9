// Package api provides HTTP API handlers for the gesture camera.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arvindh/mudra/internal/photo"
	"github.com/arvindh/mudra/internal/store"
)

// PhotoHandler handles HTTP requests for photo resources.
type PhotoHandler struct {
	store    *store.Store
	capturer *photo.Capturer
}

// NewPhotoHandler creates a new PhotoHandler with the given store and capturer.
func NewPhotoHandler(s *store.Store, c *photo.Capturer) *PhotoHandler {
	return &PhotoHandler{store: s, capturer: c}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *PhotoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/photos or /api/photos/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/photos")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/photos
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/photos/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type photoResponse struct {
	ID              string  `json:"id"`
	OriginalURL     string  `json:"original_url"`
	TransformedURL  string  `json:"transformed_url"`
	OriginalFile    string  `json:"original_file"`
	TransformedFile string  `json:"transformed_file"`
	Zoom            float64 `json:"zoom"`
	Rotation        float64 `json:"rotation"`
	TakenAt         string  `json:"taken_at"`
}

type listPhotosResponse struct {
	Photos []photoResponse `json:"photos"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Photo to a photoResponse.
func toResponse(p *store.Photo) photoResponse {
	return photoResponse{
		ID:              p.ID,
		OriginalURL:     "/photos/" + p.OriginalFile,
		TransformedURL:  "/photos/" + p.TransformedFile,
		OriginalFile:    p.OriginalFile,
		TransformedFile: p.TransformedFile,
		Zoom:            p.Zoom,
		Rotation:        p.Rotation,
		TakenAt:         p.TakenAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/photos and returns the gallery, newest first.
func (h *PhotoHandler) list(w http.ResponseWriter, r *http.Request) {
	photos, err := h.store.Photos().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}

	response := listPhotosResponse{
		Photos: make([]photoResponse, 0, len(photos)),
	}
	for _, p := range photos {
		response.Photos = append(response.Photos, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/photos/{id} and returns a single photo's metadata.
func (h *PhotoHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Photos().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get photo")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
}

// delete handles DELETE /api/photos/{id} and removes the record and files.
func (h *PhotoHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.capturer.Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete photo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
