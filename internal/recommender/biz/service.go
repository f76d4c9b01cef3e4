// Package biz implements the recommendation business logic: the startup
// index build and the query pipeline from free text to catalog rows.
package biz

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/kart-io/logger"

	"github.com/coursewise/course-recommender/internal/model"
	"github.com/coursewise/course-recommender/internal/recommender/metrics"
	"github.com/coursewise/course-recommender/internal/recommender/store"
	"github.com/coursewise/course-recommender/pkg/llm"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
	"github.com/coursewise/course-recommender/pkg/utils/errors"
)

// Startup states. The service answers queries only once Bootstrap has
// finished; until then every request is rejected with a retryable error.
const (
	stateStarting int32 = iota
	stateReady
	stateFailed
)

// Service answers recommendation queries.
type Service interface {
	// Recommend runs the query pipeline. The returned slice is never nil on
	// success; an empty result is a valid answer.
	Recommend(ctx context.Context, query, category string) ([]model.Recommendation, error)

	// Stats returns service counters for the stats endpoint.
	Stats(ctx context.Context) (map[string]interface{}, error)

	// Ready reports whether the service can answer queries.
	Ready() error

	// Bootstrap loads the catalog and builds the title index. It is meant to
	// run once, in the background, right after the server starts listening.
	Bootstrap(ctx context.Context) error
}

type recommenderService struct {
	vectorStore   store.VectorStore
	catalog       store.CatalogStore
	embedProvider llm.EmbeddingProvider
	indexer       *Indexer
	opts          *recommendopts.Options

	state atomic.Int32
}

var _ Service = (*recommenderService)(nil)

// NewService creates the recommendation service. Call Bootstrap before
// serving queries.
func NewService(vectorStore store.VectorStore, catalog store.CatalogStore, embedProvider llm.EmbeddingProvider, opts *recommendopts.Options) Service {
	return &recommenderService{
		vectorStore:   vectorStore,
		catalog:       catalog,
		embedProvider: embedProvider,
		indexer:       NewIndexer(vectorStore, embedProvider, opts),
		opts:          opts,
	}
}

func (s *recommenderService) Bootstrap(ctx context.Context) error {
	logger.Infow("bootstrap started", "catalog", s.opts.CatalogCSV, "titles", s.opts.TitlesPath)

	if err := s.catalog.Load(ctx, s.opts.CatalogCSV); err != nil {
		s.state.Store(stateFailed)
		logger.Errorw("catalog load failed", "error", err)
		return err
	}
	if err := s.indexer.BuildIndex(ctx); err != nil {
		s.state.Store(stateFailed)
		logger.Errorw("index build failed", "error", err)
		return err
	}

	s.state.Store(stateReady)
	logger.Infow("service ready")
	return nil
}

func (s *recommenderService) Ready() error {
	switch s.state.Load() {
	case stateReady:
		return nil
	case stateFailed:
		return errors.ErrStartupFailed
	default:
		return errors.ErrNotReady
	}
}

func (s *recommenderService) Recommend(ctx context.Context, query, category string) ([]model.Recommendation, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	recs, err := s.doRecommend(ctx, query, category)
	timeout := stderrors.Is(err, errors.ErrQueryTimeout)
	metrics.Get().RecordRecommend(err == nil && len(recs) == 0, timeout, err)
	return recs, err
}

// doRecommend is the query pipeline: embed, search, extract candidate ids,
// join against the catalog, filter, truncate, project.
func (s *recommenderService) doRecommend(ctx context.Context, query, category string) ([]model.Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	embedding, err := s.embedProvider.EmbedSingle(ctx, query)
	if err != nil {
		return nil, classifyUpstream(err)
	}

	start := time.Now()
	hits, err := s.vectorStore.Search(ctx, s.opts.Collection, embedding, s.opts.InitialTopK)
	metrics.Get().RecordSearch(time.Since(start), err)
	if err != nil {
		return nil, classifyUpstream(err)
	}

	ids := extractCandidateIDs(hits)
	if len(ids) == 0 {
		return []model.Recommendation{}, nil
	}

	courses, err := s.catalog.FindByCourseIDs(ctx, ids, category)
	if err != nil {
		return nil, errors.ErrDatabase.WithCause(err)
	}

	if s.opts.PreserveRank {
		courses = reorderByRank(courses, ids)
	}
	if len(courses) > s.opts.FinalTopK {
		courses = courses[:s.opts.FinalTopK]
	}

	recs := make([]model.Recommendation, 0, len(courses))
	for _, course := range courses {
		recs = append(recs, model.Recommendation{Title: course.Title, URL: course.URL})
	}
	return recs, nil
}

func (s *recommenderService) Stats(ctx context.Context) (map[string]interface{}, error) {
	catalogCount, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, errors.ErrStatsUnavailable.WithCause(err)
	}
	indexCount, err := s.vectorStore.GetStats(ctx, s.opts.Collection)
	if err != nil {
		return nil, errors.ErrStatsUnavailable.WithCause(err)
	}

	stats := metrics.Get().Stats()
	stats["catalog_courses"] = catalogCount
	stats["indexed_titles"] = indexCount
	return stats, nil
}

// classifyUpstream maps an embedding or search failure onto the wire error:
// a blown deadline is a timeout, anything else means the backend is down.
func classifyUpstream(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrQueryTimeout.WithCause(err)
	}
	return errors.ErrUpstreamUnavailable.WithCause(err)
}
