package repository

import (
	"animalfinder/internal/model"
)

// WeightsRepository defines the catalog of model files fetched into the cache.
type WeightsRepository interface {
	// Upsert inserts or replaces the record for w.Path and returns its ID.
	Upsert(w *model.Weights) (int64, error)

	// GetByPath returns nil, nil when no record exists.
	GetByPath(path string) (*model.Weights, error)
}
