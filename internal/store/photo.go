package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Photo represents a captured photo pair stored in the database. The
// original frame and the transformed frame are saved as separate files.
type Photo struct {
	ID              string
	OriginalFile    string
	TransformedFile string
	Zoom            float64
	Rotation        float64
	TakenAt         time.Time
}

// PhotoRepository provides CRUD operations for photos.
type PhotoRepository struct {
	db *sql.DB
}

// Photos returns the photo repository for this store.
func (s *Store) Photos() *PhotoRepository {
	return &PhotoRepository{db: s.db}
}

// Create inserts a new photo record into the database.
func (r *PhotoRepository) Create(p *Photo) error {
	if p.TakenAt.IsZero() {
		p.TakenAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO photos (id, original_file, transformed_file, zoom, rotation, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.OriginalFile, p.TransformedFile, p.Zoom, p.Rotation, p.TakenAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a photo by its ID.
func (r *PhotoRepository) GetByID(id string) (*Photo, error) {
	p := &Photo{}

	err := r.db.QueryRow(
		`SELECT id, original_file, transformed_file, zoom, rotation, taken_at
		 FROM photos WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.OriginalFile, &p.TransformedFile, &p.Zoom, &p.Rotation, &p.TakenAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// List retrieves all photos from the database, newest first.
func (r *PhotoRepository) List() ([]*Photo, error) {
	rows, err := r.db.Query(
		`SELECT id, original_file, transformed_file, zoom, rotation, taken_at
		 FROM photos ORDER BY taken_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []*Photo
	for rows.Next() {
		p := &Photo{}

		err := rows.Scan(&p.ID, &p.OriginalFile, &p.TransformedFile, &p.Zoom, &p.Rotation, &p.TakenAt)
		if err != nil {
			return nil, err
		}

		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// Delete removes a photo record from the database by its ID.
func (r *PhotoRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
