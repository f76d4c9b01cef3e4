package biz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/course-recommender/internal/recommender/store"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
)

func newTestIndexer(t *testing.T, titles []string, embedder *fakeEmbedder, mutate func(*recommendopts.Options)) (*Indexer, *store.MemoryStore, *recommendopts.Options) {
	t.Helper()

	titlesPath := filepath.Join(t.TempDir(), "courses_tagged.txt")
	require.NoError(t, os.WriteFile(titlesPath, []byte(strings.Join(titles, "\n")+"\n"), 0o644))

	opts := recommendopts.NewOptions()
	opts.TitlesPath = titlesPath
	opts.EmbeddingDim = 3
	if mutate != nil {
		mutate(opts)
	}

	vectorStore := store.NewMemoryStore()
	return NewIndexer(vectorStore, embedder, opts), vectorStore, opts
}

func TestBuildIndexInsertsInFileOrder(t *testing.T) {
	titles := make([]string, 12)
	for i := range titles {
		titles[i] = fmt.Sprintf("%d Course Number %d", 100+i, 100+i)
	}

	// Every title embeds to the fake's default vector, so a search against
	// that vector scores all documents equally and returns insertion order.
	indexer, vectorStore, opts := newTestIndexer(t, titles, &fakeEmbedder{}, func(o *recommendopts.Options) {
		o.IndexBatchSize = 1
		o.IndexWorkers = 4
	})

	require.NoError(t, indexer.BuildIndex(context.Background()))

	hits, err := vectorStore.Search(context.Background(), opts.Collection, []float32{0, 0, 1}, len(titles))
	require.NoError(t, err)
	require.Len(t, hits, len(titles))
	for i, hit := range hits {
		assert.Equal(t, titles[i], hit.Content)
	}
}

func TestBuildIndexEmbedFailure(t *testing.T) {
	indexer, vectorStore, opts := newTestIndexer(t, []string{"101 Course"}, &fakeEmbedder{err: assert.AnError}, nil)

	err := indexer.BuildIndex(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	// Nothing is inserted when embedding fails.
	count, err := vectorStore.GetStats(context.Background(), opts.Collection)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuildIndexEmptyTitlesFile(t *testing.T) {
	indexer, _, _ := newTestIndexer(t, []string{"", "   "}, &fakeEmbedder{}, nil)

	err := indexer.BuildIndex(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no lines")
}
