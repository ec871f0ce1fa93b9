// Package photo persists captured camera frames to disk and records them
// in the photo store.
package photo

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/arvindh/mudra/internal/store"
)

// Capturer writes photo pairs to a directory and records them in the
// database. Each capture produces two JPEG files: the raw camera frame and
// the frame with the current zoom and rotation applied.
type Capturer struct {
	dir    string
	photos *store.PhotoRepository
}

// NewCapturer creates a Capturer that stores files under dir. The
// directory is created if it does not exist.
func NewCapturer(dir string, photos *store.PhotoRepository) (*Capturer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &Capturer{dir: dir, photos: photos}, nil
}

// Dir returns the directory photos are written to.
func (c *Capturer) Dir() string {
	return c.dir
}

// Capture writes the original and transformed frames as JPEG files and
// inserts a photo record. The caller retains ownership of both Mats.
func (c *Capturer) Capture(original, transformed *gocv.Mat, zoom, rotation float64) (*store.Photo, error) {
	if original == nil || original.Empty() {
		return nil, fmt.Errorf("cannot capture empty frame")
	}
	if transformed == nil || transformed.Empty() {
		transformed = original
	}

	now := time.Now()
	stamp := now.Format("20060102_150405")
	originalFile := fmt.Sprintf("photo_%s_original.jpg", stamp)
	transformedFile := fmt.Sprintf("photo_%s_transformed.jpg", stamp)

	originalPath := filepath.Join(c.dir, originalFile)
	if ok := gocv.IMWrite(originalPath, *original); !ok {
		return nil, fmt.Errorf("failed to write %s", originalPath)
	}

	transformedPath := filepath.Join(c.dir, transformedFile)
	if ok := gocv.IMWrite(transformedPath, *transformed); !ok {
		os.Remove(originalPath)
		return nil, fmt.Errorf("failed to write %s", transformedPath)
	}

	p := &store.Photo{
		ID:              uuid.New().String(),
		OriginalFile:    originalFile,
		TransformedFile: transformedFile,
		Zoom:            zoom,
		Rotation:        rotation,
		TakenAt:         now,
	}
	if err := c.photos.Create(p); err != nil {
		os.Remove(originalPath)
		os.Remove(transformedPath)
		return nil, fmt.Errorf("failed to record photo: %w", err)
	}

	return p, nil
}

// Delete removes a photo record along with its files on disk.
func (c *Capturer) Delete(id string) error {
	p, err := c.photos.GetByID(id)
	if err != nil {
		return err
	}

	if err := c.photos.Delete(id); err != nil {
		return err
	}

	// File removal failures are not fatal once the record is gone.
	os.Remove(filepath.Join(c.dir, p.OriginalFile))
	os.Remove(filepath.Join(c.dir, p.TransformedFile))

	return nil
}
