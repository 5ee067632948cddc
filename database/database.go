package database

import (
	"context"
)

// ChunkRecord is a vector index entry. Its ID equals the chunk's ID so the
// index stays a 1:1, rebuildable projection of the chunks collection.
type ChunkRecord struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
	Vector     []float32
}

// ChunkHit is a search result: the stored payload plus the index's raw
// distance for the query vector.
type ChunkHit struct {
	ID         string
	DocumentID string
	ChunkIndex int
	Text       string
	Distance   float32
}

// VectorIndex stores chunk vectors and serves filtered similarity search.
type VectorIndex interface {
	// EnsureClass provisions the collection idempotently. It fails with
	// types.ErrCollectionConflict when the collection already exists with a
	// different dimensionality or distance metric.
	EnsureClass(ctx context.Context) error

	// BatchUpsert writes all records in one batch. Any per-record failure
	// fails the whole call so a document is never partially indexed.
	BatchUpsert(ctx context.Context, records []ChunkRecord) error

	// SearchByDocument returns up to limit nearest records whose payload
	// documentId equals the given id, ordered by the index's distance.
	SearchByDocument(ctx context.Context, vector []float32, documentID string, limit int) ([]ChunkHit, error)
}
