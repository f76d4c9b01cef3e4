// Package ollama provides the Ollama embedding provider.
package ollama

import (
	"context"
	"time"

	"github.com/coursewise/course-recommender/pkg/component/ollama"
	"github.com/coursewise/course-recommender/pkg/llm"
	embeddingopts "github.com/coursewise/course-recommender/pkg/options/embedding"
)

// ProviderName is the registry name of this provider.
const ProviderName = "ollama"

func init() {
	llm.RegisterEmbeddingProvider(ProviderName, NewProvider)
}

// Provider implements llm.EmbeddingProvider backed by an Ollama server.
type Provider struct {
	client *ollama.Client
}

// NewProvider creates an Ollama provider from a config map.
func NewProvider(configMap map[string]any) (llm.EmbeddingProvider, error) {
	opts := embeddingopts.NewOptions()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		opts.BaseURL = v
	}
	if v, ok := configMap["embed_model"].(string); ok && v != "" {
		opts.Model = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		opts.Timeout = v
	}
	if v, ok := configMap["max_retries"].(int); ok && v > 0 {
		opts.MaxRetries = v
	}

	return &Provider{client: ollama.New(opts)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// Embed generates embeddings for multiple texts.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return p.client.Embed(ctx, texts)
}

// EmbedSingle generates an embedding for a single text.
func (p *Provider) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return p.client.EmbedSingle(ctx, text)
}
