// Package recommendopts provides configuration options for the recommendation pipeline.
package recommendopts

import (
	"fmt"
	"time"

	"github.com/coursewise/course-recommender/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains recommendation-specific configuration.
type Options struct {
	// CatalogCSV is the path to the course catalog CSV file.
	CatalogCSV string `json:"catalog-csv" mapstructure:"catalog-csv"`

	// TitlesPath is the path to the tagged-titles text file, one document per line.
	TitlesPath string `json:"titles-path" mapstructure:"titles-path"`

	// Collection is the name of the Milvus collection holding title embeddings.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// InitialTopK is the number of candidates fetched from similarity search.
	InitialTopK int `json:"initial-top-k" mapstructure:"initial-top-k"`

	// FinalTopK is the maximum number of recommendations returned.
	FinalTopK int `json:"final-top-k" mapstructure:"final-top-k"`

	// PreserveRank reorders results by semantic rank instead of catalog row order.
	PreserveRank bool `json:"preserve-rank" mapstructure:"preserve-rank"`

	// QueryTimeout bounds the embed plus search phase of one request.
	QueryTimeout time.Duration `json:"query-timeout" mapstructure:"query-timeout"`

	// IndexBatchSize is the number of titles embedded per batch during index build.
	IndexBatchSize int `json:"index-batch-size" mapstructure:"index-batch-size"`

	// IndexWorkers is the number of concurrent embedding workers during index build.
	IndexWorkers int `json:"index-workers" mapstructure:"index-workers"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		CatalogCSV:     "data/courses.csv",
		TitlesPath:     "data/courses_tagged.txt",
		Collection:     "course_titles",
		EmbeddingDim:   768, // nomic-embed-text dimension
		InitialTopK:    50,
		FinalTopK:      16,
		PreserveRank:   false,
		QueryTimeout:   30 * time.Second,
		IndexBatchSize: 64,
		IndexWorkers:   4,
	}
}

// AddFlags adds flags for recommendation options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.CatalogCSV, options.Join(prefixes...)+"recommend.catalog-csv", o.CatalogCSV, "Path to the course catalog CSV file.")
	fs.StringVar(&o.TitlesPath, options.Join(prefixes...)+"recommend.titles-path", o.TitlesPath, "Path to the tagged-titles text file.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"recommend.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"recommend.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.InitialTopK, options.Join(prefixes...)+"recommend.initial-top-k", o.InitialTopK, "Number of candidates from similarity search.")
	fs.IntVar(&o.FinalTopK, options.Join(prefixes...)+"recommend.final-top-k", o.FinalTopK, "Maximum number of recommendations returned.")
	fs.BoolVar(&o.PreserveRank, options.Join(prefixes...)+"recommend.preserve-rank", o.PreserveRank, "Order results by semantic rank instead of catalog row order.")
	fs.DurationVar(&o.QueryTimeout, options.Join(prefixes...)+"recommend.query-timeout", o.QueryTimeout, "Timeout for the embed and search phase of one request.")
	fs.IntVar(&o.IndexBatchSize, options.Join(prefixes...)+"recommend.index-batch-size", o.IndexBatchSize, "Number of titles embedded per batch during index build.")
	fs.IntVar(&o.IndexWorkers, options.Join(prefixes...)+"recommend.index-workers", o.IndexWorkers, "Number of concurrent embedding workers during index build.")
}

// Validate validates the recommendation options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.CatalogCSV == "" {
		errs = append(errs, fmt.Errorf("catalog-csv is required"))
	}
	if o.TitlesPath == "" {
		errs = append(errs, fmt.Errorf("titles-path is required"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.InitialTopK <= 0 {
		errs = append(errs, fmt.Errorf("initial-top-k must be positive"))
	}
	if o.FinalTopK <= 0 {
		errs = append(errs, fmt.Errorf("final-top-k must be positive"))
	}
	if o.FinalTopK > o.InitialTopK {
		errs = append(errs, fmt.Errorf("final-top-k must not exceed initial-top-k"))
	}
	if o.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query-timeout must be positive"))
	}
	return errs
}

// Complete completes the recommendation options with defaults.
func (o *Options) Complete() error {
	if o.IndexBatchSize <= 0 {
		o.IndexBatchSize = 64
	}
	if o.IndexWorkers <= 0 {
		o.IndexWorkers = 4
	}
	return nil
}
