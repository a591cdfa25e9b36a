package services

import (
	"context"

	"journalmind/internal/models"
)

// Interfaces are declared here, in the consuming package, and cover only the
// methods the services actually call. internal/openai and internal/repository
// provide the concrete implementations.

// VectorClient generates embedding vectors. Documents and queries must go
// through the same client so they share one embedding space.
type VectorClient interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// CompletionClient generates text from a system instruction and a user prompt.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, system, prompt string) (string, error)
}

// EmbeddingRepository is what the services need from the vector store.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, emb *models.JournalEmbedding) error
	DeleteByJournalID(ctx context.Context, journalID string) error
	Search(ctx context.Context, userID string, queryEmbedding []float32, limit int, minSimilarity float64) ([]models.RetrievalMatch, error)
}
