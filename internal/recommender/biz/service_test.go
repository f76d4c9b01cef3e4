package biz

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/course-recommender/internal/model"
	"github.com/coursewise/course-recommender/internal/recommender/store"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
	"github.com/coursewise/course-recommender/pkg/utils/errors"
)

// fakeEmbedder returns canned vectors keyed by exact text. Unknown text gets
// a far-away default so it never outranks a canned vector.
type fakeEmbedder struct {
	vectors    map[string][]float32
	err        error
	embedCalls atomic.Int64
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.embedCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = f.vectorFor(text)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vectorFor(text), nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

func (f *fakeEmbedder) vectorFor(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	return []float32{0, 0, 1}
}

const serviceCatalog = `course_id,course_title,url,subject
101,Build Modern Websites,https://example.com/101,Web Development
202,Stock Trading Basics,https://example.com/202,Business Finance
303,Logo Design Masterclass,https://example.com/303,Graphic Design
404,Piano for Beginners,https://example.com/404,Musical Instruments
999,Mystery Course,https://example.com/999,Astrology
`

const serviceTitles = `101 Build Modern Websites
202 Stock Trading Basics
303 Logo Design Masterclass
404 Piano for Beginners
999 Mystery Course
untagged line without an identifier
101 Build Modern Websites
`

// webQueryVectors ranks the index against the query "web courses" in the
// order 101, 303, 202, 404, 999.
func webQueryVectors() map[string][]float32 {
	return map[string][]float32{
		"web courses":                 {1, 0, 0},
		"101 Build Modern Websites":   {1, 0, 0},
		"303 Logo Design Masterclass": {0.9, 0.4, 0},
		"202 Stock Trading Basics":    {0.5, 0.8, 0},
		"404 Piano for Beginners":     {0.2, 0.9, 0},
		"999 Mystery Course":          {0, 1, 0},
	}
}

func writeDataFiles(t *testing.T, catalogCSV, titles string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "courses.csv")
	titlesPath := filepath.Join(dir, "courses_tagged.txt")
	require.NoError(t, os.WriteFile(csvPath, []byte(catalogCSV), 0o644))
	require.NoError(t, os.WriteFile(titlesPath, []byte(titles), 0o644))
	return csvPath, titlesPath
}

func newTestService(t *testing.T, embedder *fakeEmbedder, mutate func(*recommendopts.Options)) Service {
	t.Helper()

	csvPath, titlesPath := writeDataFiles(t, serviceCatalog, serviceTitles)
	opts := recommendopts.NewOptions()
	opts.CatalogCSV = csvPath
	opts.TitlesPath = titlesPath
	opts.EmbeddingDim = 3
	opts.QueryTimeout = 5 * time.Second
	if mutate != nil {
		mutate(opts)
	}

	catalog, err := store.NewCatalog()
	require.NoError(t, err)

	return NewService(store.NewMemoryStore(), catalog, embedder, opts)
}

func newReadyService(t *testing.T, embedder *fakeEmbedder, mutate func(*recommendopts.Options)) Service {
	t.Helper()
	svc := newTestService(t, embedder, mutate)
	require.NoError(t, svc.Bootstrap(context.Background()))
	require.NoError(t, svc.Ready())
	return svc
}

func TestServiceNotReadyBeforeBootstrap(t *testing.T) {
	svc := newTestService(t, &fakeEmbedder{}, nil)

	assert.ErrorIs(t, svc.Ready(), errors.ErrNotReady)

	_, err := svc.Recommend(context.Background(), "anything", model.CategoryAll)
	assert.ErrorIs(t, err, errors.ErrNotReady)
}

func TestServiceBootstrapFailure(t *testing.T) {
	svc := newTestService(t, &fakeEmbedder{}, func(o *recommendopts.Options) {
		o.CatalogCSV = "/nonexistent/courses.csv"
	})

	require.Error(t, svc.Bootstrap(context.Background()))
	assert.ErrorIs(t, svc.Ready(), errors.ErrStartupFailed)

	_, err := svc.Recommend(context.Background(), "anything", model.CategoryAll)
	assert.ErrorIs(t, err, errors.ErrStartupFailed)
}

func TestServiceRecommendNativeRowOrder(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)

	recs, err := svc.Recommend(context.Background(), "web courses", model.CategoryAll)
	require.NoError(t, err)

	// Semantic rank is 101, 303, 202, 404, 999 but results come back in
	// catalog row order.
	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{
		"Build Modern Websites",
		"Stock Trading Basics",
		"Logo Design Masterclass",
		"Piano for Beginners",
		"Mystery Course",
	}, titles)
}

func TestServiceRecommendPreserveRank(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, func(o *recommendopts.Options) {
		o.PreserveRank = true
	})

	recs, err := svc.Recommend(context.Background(), "web courses", model.CategoryAll)
	require.NoError(t, err)

	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{
		"Build Modern Websites",
		"Logo Design Masterclass",
		"Stock Trading Basics",
		"Piano for Beginners",
		"Mystery Course",
	}, titles)
}

func TestServiceRecommendCategoryFilter(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)

	recs, err := svc.Recommend(context.Background(), "web courses", "Computer Science")
	require.NoError(t, err)

	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"Build Modern Websites", "Logo Design Masterclass"}, titles)
}

func TestServiceRecommendUnknownCategoryIsEmptyNotError(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)

	recs, err := svc.Recommend(context.Background(), "web courses", "Underwater Archaeology")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestServiceRecommendTruncation(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, func(o *recommendopts.Options) {
		o.FinalTopK = 2
	})

	recs, err := svc.Recommend(context.Background(), "web courses", model.CategoryAll)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestServiceRecommendUpstreamFailure(t *testing.T) {
	ready := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)
	svc := ready.(*recommenderService)

	// Swap in a failing embedder after bootstrap so only the query path fails.
	svc.embedProvider = &fakeEmbedder{err: assert.AnError}

	_, err := svc.Recommend(context.Background(), "web courses", model.CategoryAll)
	assert.ErrorIs(t, err, errors.ErrUpstreamUnavailable)
}

func TestServiceRecommendTimeout(t *testing.T) {
	ready := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)
	svc := ready.(*recommenderService)

	svc.embedProvider = &fakeEmbedder{err: context.DeadlineExceeded}

	_, err := svc.Recommend(context.Background(), "web courses", model.CategoryAll)
	assert.ErrorIs(t, err, errors.ErrQueryTimeout)
}

func TestServiceBootstrapIsIdempotent(t *testing.T) {
	embedder := &fakeEmbedder{vectors: webQueryVectors()}
	svc := newReadyService(t, embedder, nil)

	callsAfterFirst := embedder.embedCalls.Load()
	require.Positive(t, callsAfterFirst)

	// A second bootstrap sees the populated collection and skips embedding.
	require.NoError(t, svc.Bootstrap(context.Background()))
	assert.Equal(t, callsAfterFirst, embedder.embedCalls.Load())
}

func TestServiceStats(t *testing.T) {
	svc := newReadyService(t, &fakeEmbedder{vectors: webQueryVectors()}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats["catalog_courses"])
	// All seven title lines are indexed, including the untagged one and the
	// duplicate; they are only filtered out at query time.
	assert.Equal(t, int64(7), stats["indexed_titles"])
}
