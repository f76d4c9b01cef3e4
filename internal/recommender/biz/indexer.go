package biz

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/coursewise/course-recommender/internal/recommender/metrics"
	"github.com/coursewise/course-recommender/internal/recommender/store"
	"github.com/coursewise/course-recommender/pkg/llm"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
)

// Indexer builds the title embedding index at startup.
type Indexer struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	opts          *recommendopts.Options
}

// NewIndexer creates an indexer instance.
func NewIndexer(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, opts *recommendopts.Options) *Indexer {
	return &Indexer{
		store:         vectorStore,
		embedProvider: embedProvider,
		opts:          opts,
	}
}

// BuildIndex embeds the tagged-title file into the vector collection. The
// build is idempotent: a collection that already holds documents is left
// untouched, so restarts skip the embedding pass.
func (i *Indexer) BuildIndex(ctx context.Context) error {
	collectionConfig := &store.CollectionConfig{
		Name:        i.opts.Collection,
		Description: "Tagged course titles for similarity search",
		Dimension:   i.opts.EmbeddingDim,
	}
	if err := i.store.CreateCollection(ctx, collectionConfig); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	count, err := i.store.GetStats(ctx, i.opts.Collection)
	if err != nil {
		return fmt.Errorf("failed to read collection stats: %w", err)
	}
	if count > 0 {
		logger.Infow("index already populated, skipping build",
			"collection", i.opts.Collection, "documents", count)
		return nil
	}

	titles, err := i.readTitles()
	if err != nil {
		return err
	}
	logger.Infow("building title index",
		"collection", i.opts.Collection,
		"titles", len(titles),
		"batch_size", i.opts.IndexBatchSize,
		"workers", i.opts.IndexWorkers)

	pool, err := ants.NewPool(i.opts.IndexWorkers)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	batchCount := (len(titles) + i.opts.IndexBatchSize - 1) / i.opts.IndexBatchSize
	batches := make([][]*store.TitleDocument, batchCount)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for n := 0; n < batchCount; n++ {
		start := n * i.opts.IndexBatchSize
		end := start + i.opts.IndexBatchSize
		if end > len(titles) {
			end = len(titles)
		}
		batch := titles[start:end]
		slot := n

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			docs, err := i.embedBatch(ctx, batch)
			if err != nil {
				metrics.Get().RecordIndexing(0, err)
				recordErr(err)
				return
			}
			batches[slot] = docs
		}); err != nil {
			wg.Done()
			recordErr(fmt.Errorf("failed to submit index batch: %w", err))
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("index build failed: %w", firstErr)
	}

	// Embedding is parallel but inserts stay in file order, so document ids
	// follow the title file and equal-score search ties break the same way on
	// every build.
	for _, docs := range batches {
		if _, err := i.store.Insert(ctx, i.opts.Collection, docs); err != nil {
			insertErr := fmt.Errorf("failed to insert documents: %w", err)
			metrics.Get().RecordIndexing(0, insertErr)
			return fmt.Errorf("index build failed: %w", insertErr)
		}
		metrics.Get().RecordIndexing(len(docs), nil)
	}
	logger.Infow("index build completed", "collection", i.opts.Collection, "titles", len(titles))
	return nil
}

// embedBatch embeds one batch of titles into insertable documents.
func (i *Indexer) embedBatch(ctx context.Context, titles []string) ([]*store.TitleDocument, error) {
	embeddings, err := i.embedProvider.Embed(ctx, titles)
	if err != nil {
		return nil, fmt.Errorf("failed to embed titles: %w", err)
	}
	if len(embeddings) != len(titles) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d titles", len(embeddings), len(titles))
	}

	docs := make([]*store.TitleDocument, len(titles))
	for idx, title := range titles {
		docs[idx] = &store.TitleDocument{
			Content:   title,
			Embedding: embeddings[idx],
		}
	}
	return docs, nil
}

// readTitles loads the tagged-title file, one document per non-empty line.
func (i *Indexer) readTitles() ([]string, error) {
	f, err := os.Open(i.opts.TitlesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open titles file: %w", err)
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		titles = append(titles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read titles file: %w", err)
	}
	if len(titles) == 0 {
		return nil, fmt.Errorf("titles file %s contains no lines", i.opts.TitlesPath)
	}
	return titles, nil
}
