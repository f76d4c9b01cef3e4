package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursewise/course-recommender/pkg/llm"
	_ "github.com/coursewise/course-recommender/pkg/llm/ollama"
)

type nullProvider struct{}

func (nullProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (nullProvider) EmbedSingle(context.Context, string) ([]float32, error) {
	return nil, nil
}

func (nullProvider) Name() string { return "null" }

func TestOllamaProviderRegisteredByImport(t *testing.T) {
	assert.Contains(t, llm.ListEmbeddingProviders(), "ollama")

	provider, err := llm.NewEmbeddingProvider("ollama", map[string]any{
		"base_url":    "http://localhost:11434",
		"embed_model": "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider.Name())
}

func TestNewEmbeddingProviderUnknown(t *testing.T) {
	_, err := llm.NewEmbeddingProvider("does-not-exist", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embedding provider")
}

func TestRegisterEmbeddingProvider(t *testing.T) {
	llm.RegisterEmbeddingProvider("null", func(map[string]any) (llm.EmbeddingProvider, error) {
		return nullProvider{}, nil
	})

	provider, err := llm.NewEmbeddingProvider("null", nil)
	require.NoError(t, err)
	assert.Equal(t, "null", provider.Name())
}
