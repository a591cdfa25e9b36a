package services

import (
	"context"
	"fmt"

	"journalmind/internal/middleware"
	"journalmind/internal/models"

	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel/attribute"
)

// EmbedderService keeps journal embeddings in step with their source
// entries: every live journal has at most one embedding, and edited or
// deleted journals leave no stale vectors behind.
type EmbedderService struct {
	vectors VectorClient
	repo    EmbeddingRepository
}

// NewEmbedderService creates an embedder over the given vector client and
// store.
func NewEmbedderService(vectors VectorClient, repo EmbeddingRepository) *EmbedderService {
	return &EmbedderService{
		vectors: vectors,
		repo:    repo,
	}
}

// Embed computes the vector for content and stores it keyed by journal.
// Content must already be composed into a single string by the caller
// (title plus body for journal entries). Storage is an atomic replace, so a
// prior embedding for the same journal is superseded rather than duplicated.
func (s *EmbedderService) Embed(ctx context.Context, journalID, userID, content string) (*models.JournalEmbedding, error) {
	ctx, span := middleware.StartSpan(ctx, "Embedder.Embed",
		attribute.String("journal.id", journalID),
		attribute.Int("content_length", len(content)),
	)
	defer span.End()

	if content == "" {
		err := &EmbeddingError{JournalID: journalID, Err: fmt.Errorf("content is empty")}
		middleware.AddSpanError(ctx, err)
		return nil, err
	}

	vector, err := s.vectors.CreateEmbedding(ctx, content)
	if err != nil {
		wrapped := &EmbeddingError{JournalID: journalID, Err: fmt.Errorf("failed to create embedding: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return nil, wrapped
	}

	emb := &models.JournalEmbedding{
		JournalID: journalID,
		UserID:    userID,
		Content:   content,
		Embedding: pgvector.NewVector(vector),
	}
	if err := s.repo.Upsert(ctx, emb); err != nil {
		wrapped := &EmbeddingError{JournalID: journalID, Err: fmt.Errorf("failed to store embedding: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return nil, wrapped
	}

	return emb, nil
}

// Evict removes any embedding for the journal. Evicting a journal with no
// embedding is a no-op.
func (s *EmbedderService) Evict(ctx context.Context, journalID string) error {
	ctx, span := middleware.StartSpan(ctx, "Embedder.Evict",
		attribute.String("journal.id", journalID),
	)
	defer span.End()

	if err := s.repo.DeleteByJournalID(ctx, journalID); err != nil {
		wrapped := &EmbeddingError{JournalID: journalID, Err: fmt.Errorf("failed to evict embedding: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return wrapped
	}
	return nil
}
