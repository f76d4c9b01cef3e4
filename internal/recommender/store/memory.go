package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore implements VectorStore with brute-force cosine similarity.
// It is used in tests and as a dependency-free fallback for small indexes.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dimension int
	docs      []*TitleDocument
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

// CreateCollection creates the collection if it does not exist.
func (s *MemoryStore) CreateCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[config.Name]; ok {
		return nil
	}
	s.collections[config.Name] = &memoryCollection{dimension: config.Dimension}
	return nil
}

// Insert appends documents in order.
func (s *MemoryStore) Insert(_ context.Context, collection string, docs []*TitleDocument) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %s does not exist", collection)
	}

	ids := make([]int64, len(docs))
	for i, doc := range docs {
		ids[i] = int64(len(coll.docs))
		coll.docs = append(coll.docs, doc)
	}
	return ids, nil
}

// Search returns up to topK documents by descending cosine similarity.
// The sort is stable, so equal scores keep insertion order. An empty or
// missing collection yields an empty result.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok || len(coll.docs) == 0 {
		return []*SearchResult{}, nil
	}

	results := make([]*SearchResult, 0, len(coll.docs))
	for _, doc := range coll.docs {
		results = append(results, &SearchResult{
			Content: doc.Content,
			Score:   cosineSimilarity(embedding, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// GetStats returns the number of stored documents.
func (s *MemoryStore) GetStats(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	return int64(len(coll.docs)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or zero-length vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
