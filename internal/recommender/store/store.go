// Package store provides the catalog and vector storage layers for the
// recommender service.
package store

import (
	"context"

	"github.com/coursewise/course-recommender/internal/model"
)

// TitleDocument is one tagged-title line with its embedding.
type TitleDocument struct {
	// Content is the raw line, expected to carry a course id as a digit run.
	Content string
	// Embedding is the fixed-dimension vector for Content.
	Embedding []float32
}

// SearchResult is one similarity search hit.
type SearchResult struct {
	Content string
	Score   float32
}

// CollectionConfig describes a vector collection.
type CollectionConfig struct {
	Name        string
	Description string
	Dimension   int
}

// VectorStore is the similarity index over title documents.
// Implementations must treat the index as append-only: documents are inserted
// once during the startup build and only searched afterwards.
type VectorStore interface {
	// CreateCollection creates the collection if it does not exist.
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert stores documents with their embeddings.
	Insert(ctx context.Context, collection string, docs []*TitleDocument) ([]int64, error)

	// Search returns up to topK documents nearest to the embedding, best first.
	// An empty index yields an empty slice, not an error.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the number of stored documents.
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// CatalogStore holds the course catalog, loaded once and read-only afterwards.
type CatalogStore interface {
	// Load reads the catalog CSV into the store.
	Load(ctx context.Context, csvPath string) error

	// FindByCourseIDs returns all rows whose course id is in ids, in native
	// row order. A concrete category filters rows to that category; rows with
	// no category never match a concrete filter. model.CategoryAll disables
	// the filter.
	FindByCourseIDs(ctx context.Context, ids []int64, category string) ([]*model.Course, error)

	// Count returns the number of catalog rows.
	Count(ctx context.Context) (int64, error)
}
