// Package embeddingopts provides options for the embedding provider.
package embeddingopts

import (
	"fmt"
	"time"

	"github.com/coursewise/course-recommender/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains embedding provider configuration.
type Options struct {
	// Provider is the provider name (ollama).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the provider API base URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Model is the embedding model name.
	Model string `json:"model" mapstructure:"model"`

	// Timeout for embedding requests.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum number of retries for failed requests.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Provider:   "ollama",
		BaseURL:    "http://localhost:11434",
		Model:      "nomic-embed-text",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// ToConfigMap converts the options to a config map for the provider factory.
func (o *Options) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"embed_model": o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"embedding.provider", o.Provider, "Embedding provider name.")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"embedding.base-url", o.BaseURL, "Embedding API base URL.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"embedding.model", o.Model, "Embedding model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"embedding.timeout", o.Timeout, "Embedding request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"embedding.max-retries", o.MaxRetries, "Max retries for failed embedding requests.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("embedding provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("embedding base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("embedding model is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("embedding timeout must be positive"))
	}
	return errs
}

// Complete completes the options with defaults.
func (o *Options) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
