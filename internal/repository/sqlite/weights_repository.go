package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"animalfinder/internal/model"
)

// WeightsRepository implements repository.WeightsRepository for SQLite.
type WeightsRepository struct {
	db *DB
}

// NewWeightsRepository creates a new SQLite weights repository.
func NewWeightsRepository(db *DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

// Upsert inserts a record or replaces the one with the same path.
func (r *WeightsRepository) Upsert(w *model.Weights) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	_, err := r.db.Conn().Exec(`
		INSERT INTO weights (path, url, sha256, size, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			url = excluded.url,
			sha256 = excluded.sha256,
			size = excluded.size,
			fetched_at = excluded.fetched_at
	`, w.Path, w.URL, w.SHA256, w.Size, w.FetchedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert weights: %w", err)
	}

	// LastInsertId is not reliable for the update branch.
	var id int64
	if err := r.db.Conn().QueryRow(`SELECT id FROM weights WHERE path = ?`, w.Path).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read weights id: %w", err)
	}
	w.ID = id
	return id, nil
}

// GetByPath retrieves the record for a weights file.
func (r *WeightsRepository) GetByPath(path string) (*model.Weights, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var w model.Weights
	err := r.db.Conn().QueryRow(`
		SELECT id, path, url, sha256, size, fetched_at
		FROM weights WHERE path = ?
	`, path).Scan(&w.ID, &w.Path, &w.URL, &w.SHA256, &w.Size, &w.FetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weights: %w", err)
	}
	return &w, nil
}
