package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testPhoto() *Photo {
	return &Photo{
		ID:              uuid.New().String(),
		OriginalFile:    "photo_20250101_120000_original.jpg",
		TransformedFile: "photo_20250101_120000_transformed.jpg",
		Zoom:            1.8,
		Rotation:        -12.5,
	}
}

func TestPhotoRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Photos()

	p := testPhoto()
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.TakenAt.IsZero() {
		t.Error("Create() should populate TakenAt when unset")
	}
}

func TestPhotoRepository_Create_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Photos()

	p := testPhoto()
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := repo.Create(p); err == nil {
		t.Error("Create() with duplicate ID should fail")
	}
}

func TestPhotoRepository_GetByID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Photos()

	p := testPhoto()
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(p.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID = %q, want %q", got.ID, p.ID)
	}
	if got.OriginalFile != p.OriginalFile {
		t.Errorf("OriginalFile = %q, want %q", got.OriginalFile, p.OriginalFile)
	}
	if got.TransformedFile != p.TransformedFile {
		t.Errorf("TransformedFile = %q, want %q", got.TransformedFile, p.TransformedFile)
	}
	if got.Zoom != p.Zoom {
		t.Errorf("Zoom = %f, want %f", got.Zoom, p.Zoom)
	}
	if got.Rotation != p.Rotation {
		t.Errorf("Rotation = %f, want %f", got.Rotation, p.Rotation)
	}
}

func TestPhotoRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Photos().GetByID("nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestPhotoRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Photos()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := testPhoto()
		p.TakenAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(p); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	photos, err := repo.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(photos) != 3 {
		t.Fatalf("List() returned %d photos, want 3", len(photos))
	}

	// Newest first.
	for i := 1; i < len(photos); i++ {
		if photos[i].TakenAt.After(photos[i-1].TakenAt) {
			t.Errorf("photos not sorted newest first at index %d", i)
		}
	}
}

func TestPhotoRepository_List_Empty(t *testing.T) {
	s := newTestStore(t)

	photos, err := s.Photos().List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(photos) != 0 {
		t.Errorf("List() returned %d photos, want 0", len(photos))
	}
}

func TestPhotoRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Photos()

	p := testPhoto()
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.Delete(p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := repo.GetByID(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestPhotoRepository_Delete_NotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.Photos().Delete("nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
