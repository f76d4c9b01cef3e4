// Package options contains flags and options for initializing the server.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/coursewise/course-recommender/internal/recommender"
	"github.com/coursewise/course-recommender/pkg/app"
	embeddingopts "github.com/coursewise/course-recommender/pkg/options/embedding"
	logopts "github.com/coursewise/course-recommender/pkg/options/logger"
	milvusopts "github.com/coursewise/course-recommender/pkg/options/milvus"
	recommendopts "github.com/coursewise/course-recommender/pkg/options/recommend"
	httpopts "github.com/coursewise/course-recommender/pkg/options/server/http"
)

var _ app.CliOptions = (*ServerOptions)(nil)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *embeddingopts.Options `json:"embedding" mapstructure:"embedding"`

	// RecommendOptions contains recommendation pipeline configuration.
	RecommendOptions *recommendopts.Options `json:"recommend" mapstructure:"recommend"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: embeddingopts.NewOptions(),
		RecommendOptions: recommendopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags adds all server flags to the given flagset.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs)
	o.RecommendOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout.")
}

// Complete fills in defaults that depend on other options.
func (o *ServerOptions) Complete() error {
	if err := o.LogOptions.Complete(); err != nil {
		return err
	}
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return err
	}
	return o.RecommendOptions.Complete()
}

// Validate checks all options and aggregates the failures.
func (o *ServerOptions) Validate() error {
	var errs []error
	errs = append(errs, o.HTTPOptions.Validate()...)
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.RecommendOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown-timeout must be positive"))
	}
	return utilerrors.NewAggregate(errs)
}

// Config builds the server runtime configuration from the options.
func (o *ServerOptions) Config() (*recommender.Config, error) {
	return &recommender.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		RecommendOptions: o.RecommendOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
