package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/coursewise/course-recommender/pkg/component/milvus"
)

// maxContentLen bounds the stored tagged-title line.
const maxContentLen = 2048

// MilvusStore implements VectorStore on a Milvus collection.
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates a Milvus-backed vector store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection creates the title collection if it does not exist.
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: maxContentLen},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert stores title documents with their embeddings.
func (s *MilvusStore) Insert(ctx context.Context, collection string, docs []*TitleDocument) ([]int64, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(docs))
	contents := make([]any, len(docs))
	for i, doc := range docs {
		embeddings[i] = doc.Embedding
		contents[i] = doc.Content
	}

	data := &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   map[string][]any{"content": contents},
	}

	ids, err := s.client.Insert(ctx, collection, data)
	if err != nil {
		return nil, fmt.Errorf("failed to insert into milvus: %w", err)
	}
	return ids, nil
}

// Search returns up to topK documents nearest to the embedding.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	results, err := s.client.Search(ctx, collection, embedding, topK, []string{"content"})
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		content, _ := r.Metadata["content"].(string)
		searchResults = append(searchResults, &SearchResult{
			Content: content,
			Score:   r.Score,
		})
	}
	return searchResults, nil
}

// GetStats returns the number of stored documents.
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
