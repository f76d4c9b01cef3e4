package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	embeddingopts "github.com/coursewise/course-recommender/pkg/options/embedding"
)

func newTestClient(baseURL string) *Client {
	opts := embeddingopts.NewOptions()
	opts.BaseURL = baseURL
	opts.Model = "nomic-embed-text"
	opts.Timeout = 5 * time.Second
	opts.MaxRetries = 0
	return New(opts)
}

func TestEmbed(t *testing.T) {
	var gotReq EmbedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := EmbedResponse{
			Model:      gotReq.Model,
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	embeddings, err := newTestClient(srv.URL).Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, "nomic-embed-text", gotReq.Model)
	assert.Equal(t, []string{"first", "second"}, gotReq.Input)
	require.Len(t, embeddings, 2)
	assert.Equal(t, []float32{0.1, 0.2}, embeddings[0])
}

func TestEmbedEmptyInput(t *testing.T) {
	embeddings, err := newTestClient("http://localhost:0").Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestEmbedSingle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(EmbedResponse{Embeddings: [][]float32{{1, 2, 3}}})
	}))
	defer srv.Close()

	embedding, err := newTestClient(srv.URL).EmbedSingle(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, embedding)
}

func TestEmbedRetriesResendBody(t *testing.T) {
	var attempts atomic.Int32
	var lastInput []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			// Drop the first attempt mid-flight to force a client retry.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		var req EmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		lastInput = req.Input
		_ = json.NewEncoder(w).Encode(EmbedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	opts := embeddingopts.NewOptions()
	opts.BaseURL = srv.URL
	opts.Timeout = 5 * time.Second
	opts.MaxRetries = 2
	client := New(opts)

	_, err := client.Embed(context.Background(), []string{"retried text"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
	// The retried request must carry the full body again.
	assert.Equal(t, []string{"retried text"}, lastInput)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv.URL).Ping(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"nomic-embed-text"},{"name":"llama3"}]}`))
	}))
	defer srv.Close()

	models, err := newTestClient(srv.URL).ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"nomic-embed-text", "llama3"}, models)
}
