package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCollection(t *testing.T, docs []*TitleDocument) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.CreateCollection(context.Background(), &CollectionConfig{
		Name:      "titles",
		Dimension: 3,
	}))
	if len(docs) > 0 {
		_, err := s.Insert(context.Background(), "titles", docs)
		require.NoError(t, err)
	}
	return s
}

func TestMemoryStoreSearchRanksBySimilarity(t *testing.T) {
	s := newMemoryCollection(t, []*TitleDocument{
		{Content: "far", Embedding: []float32{0, 1, 0}},
		{Content: "near", Embedding: []float32{1, 0.1, 0}},
		{Content: "exact", Embedding: []float32{1, 0, 0}},
	})

	results, err := s.Search(context.Background(), "titles", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Content)
	assert.Equal(t, "near", results[1].Content)
	assert.Equal(t, "far", results[2].Content)
}

func TestMemoryStoreSearchTiesKeepInsertionOrder(t *testing.T) {
	s := newMemoryCollection(t, []*TitleDocument{
		{Content: "first", Embedding: []float32{1, 0, 0}},
		{Content: "second", Embedding: []float32{2, 0, 0}},
		{Content: "third", Embedding: []float32{3, 0, 0}},
	})

	// All three are colinear with the query, so all scores tie at 1.
	results, err := s.Search(context.Background(), "titles", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "second", results[1].Content)
	assert.Equal(t, "third", results[2].Content)
}

func TestMemoryStoreSearchTruncatesToTopK(t *testing.T) {
	s := newMemoryCollection(t, []*TitleDocument{
		{Content: "a", Embedding: []float32{1, 0, 0}},
		{Content: "b", Embedding: []float32{0.9, 0.1, 0}},
		{Content: "c", Embedding: []float32{0, 1, 0}},
	})

	results, err := s.Search(context.Background(), "titles", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestMemoryStoreSearchEmptyCollection(t *testing.T) {
	s := newMemoryCollection(t, nil)

	results, err := s.Search(context.Background(), "titles", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestMemoryStoreSearchUnknownCollection(t *testing.T) {
	s := NewMemoryStore()

	results, err := s.Search(context.Background(), "missing", []float32{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreInsertUnknownCollection(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Insert(context.Background(), "missing", []*TitleDocument{{Content: "x"}})
	require.Error(t, err)
}

func TestMemoryStoreStats(t *testing.T) {
	s := newMemoryCollection(t, []*TitleDocument{
		{Content: "a", Embedding: []float32{1, 0, 0}},
		{Content: "b", Embedding: []float32{0, 1, 0}},
	})

	count, err := s.GetStats(context.Background(), "titles")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = s.GetStats(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{0, 0}))
}
