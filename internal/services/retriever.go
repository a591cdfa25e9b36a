package services

import (
	"context"
	"fmt"

	"journalmind/internal/middleware"
	"journalmind/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultRetrievalLimit caps how many journal entries feed one answer.
	DefaultRetrievalLimit = 5
	// DefaultMinSimilarity is the relevance floor below which a match is
	// noise rather than context.
	DefaultMinSimilarity = 0.3
)

// RetrieverService finds the stored journal entries most relevant to a
// query, scoped to a single user. It is read-only over the embedding store.
type RetrieverService struct {
	vectors VectorClient
	repo    EmbeddingRepository

	defaultLimit         int
	defaultMinSimilarity float64
}

// NewRetrieverService creates a retriever sharing the embedder's vector
// client, so queries and documents land in the same embedding space.
// defaultLimit and defaultMinSimilarity override the package defaults when
// positive; they apply whenever Retrieve is called with a non-positive
// value.
func NewRetrieverService(vectors VectorClient, repo EmbeddingRepository, defaultLimit int, defaultMinSimilarity float64) *RetrieverService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultRetrievalLimit
	}
	if defaultMinSimilarity <= 0 {
		defaultMinSimilarity = DefaultMinSimilarity
	}
	return &RetrieverService{
		vectors:              vectors,
		repo:                 repo,
		defaultLimit:         defaultLimit,
		defaultMinSimilarity: defaultMinSimilarity,
	}
}

// Retrieve returns up to limit matches for the query among the user's
// journal entries, most similar first, excluding anything below
// minSimilarity. An empty result is a normal outcome; an error always means
// the retrieval infrastructure itself failed.
func (s *RetrieverService) Retrieve(ctx context.Context, userID, query string, limit int, minSimilarity float64) ([]models.RetrievalMatch, error) {
	ctx, span := middleware.StartSpan(ctx, "Retriever.Retrieve",
		attribute.String("user.id", userID),
		attribute.Int("limit", limit),
		attribute.Float64("min_similarity", minSimilarity),
	)
	defer span.End()

	if limit <= 0 {
		limit = s.defaultLimit
	}
	if minSimilarity <= 0 {
		minSimilarity = s.defaultMinSimilarity
	}

	queryEmbedding, err := s.vectors.CreateEmbedding(ctx, query)
	if err != nil {
		wrapped := &RetrievalError{Err: fmt.Errorf("failed to embed query: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return nil, wrapped
	}

	matches, err := s.repo.Search(ctx, userID, queryEmbedding, limit, minSimilarity)
	if err != nil {
		wrapped := &RetrievalError{Err: fmt.Errorf("failed to search: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return nil, wrapped
	}

	middleware.AddSpanEvent(ctx, "retrieval_completed",
		attribute.Int("matches", len(matches)),
	)
	return matches, nil
}
