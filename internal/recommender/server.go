// Package recommender provides the course recommendation server.
package recommender

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/coursewise/course-recommender/internal/pkg/middleware"
	"github.com/coursewise/course-recommender/internal/recommender/biz"
	"github.com/coursewise/course-recommender/internal/recommender/handler"
	"github.com/coursewise/course-recommender/internal/recommender/router"
	"github.com/coursewise/course-recommender/internal/recommender/store"
	"github.com/coursewise/course-recommender/pkg/app"
	"github.com/coursewise/course-recommender/pkg/component/milvus"
	"github.com/coursewise/course-recommender/pkg/llm"

	// Register embedding providers.
	_ "github.com/coursewise/course-recommender/pkg/llm/ollama"

	embeddingopts "github.com/coursewise/course-recommender/pkg/options/embedding"
	logopts "github.com/coursewise/course-recommender/pkg/options/logger"
	milvusopts "github.com/coursewise/course-recommender/pkg/options/milvus"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
	httpopts "github.com/coursewise/course-recommender/pkg/options/server/http"
)

// Name is the name of the application.
const Name = "course-recommender"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *embeddingopts.Options
	RecommendOptions *recommendopts.Options
	ShutdownTimeout  time.Duration
}

// Server represents the recommendation server.
type Server struct {
	httpServer      *http.Server
	service         biz.Service
	shutdownTimeout time.Duration
	milvusClose     func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(_ context.Context) (*Server, error) {
	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting recommendation service...")

	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	vectorStore := store.NewMilvusStore(milvusClient)
	logger.Info("Vector store initialized")

	catalog, err := store.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}
	logger.Info("Catalog store initialized")

	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	service := biz.NewService(vectorStore, catalog, embedProvider, cfg.RecommendOptions)
	logger.Infow("Recommendation service initialized",
		"collection", cfg.RecommendOptions.Collection,
		"initial_top_k", cfg.RecommendOptions.InitialTopK,
		"final_top_k", cfg.RecommendOptions.FinalTopK,
		"preserve_rank", cfg.RecommendOptions.PreserveRank,
	)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)
	router.Register(engine, handler.NewRecommendHandler(service))

	httpServer := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	return &Server{
		httpServer:      httpServer,
		service:         service,
		shutdownTimeout: cfg.ShutdownTimeout,
		milvusClose:     func() { _ = milvusClient.Close(context.Background()) },
	}, nil
}

// Run starts the server and blocks until ctx is canceled or the listener
// fails. The catalog load and index build run in the background so the
// probes answer immediately; queries are rejected until bootstrap finishes.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		if err := s.service.Bootstrap(context.Background()); err != nil {
			logger.Errorw("bootstrap failed, queries will be rejected", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if s.milvusClose != nil {
		s.milvusClose()
	}
	logger.Info("Server stopped")
	return nil
}
