package store

// Schema statements, applied in order. All use IF NOT EXISTS so migrate is
// safe to run on every startup.
var schema = []string{
	// One row per captured photo pair, with the view transform that was
	// active at the moment of capture.
	`CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		original_file TEXT NOT NULL,
		transformed_file TEXT NOT NULL,
		zoom REAL NOT NULL DEFAULT 1.0,
		rotation REAL NOT NULL DEFAULT 0.0,
		taken_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	// Free-form key/value settings, e.g. gesture tuning saved from the API.
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,

	// The gallery lists photos newest first.
	`CREATE INDEX IF NOT EXISTS idx_photos_taken_at ON photos(taken_at)`,
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
