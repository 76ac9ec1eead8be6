package model

import "time"

// Weights records a model file fetched into the local cache.
type Weights struct {
	ID        int64
	Path      string
	URL       string
	SHA256    string
	Size      int64
	FetchedAt time.Time
}
