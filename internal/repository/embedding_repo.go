package repository

import (
	"context"
	"fmt"

	"journalmind/internal/models"

	"github.com/pgvector/pgvector-go"
	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

// EmbeddingRepositoryImpl handles vector persistence using pgvector.
// This is the implementation - consumers define the interfaces they need.
type EmbeddingRepositoryImpl struct {
	db *gorm.DB
}

// NewEmbeddingRepository creates a new embedding repository.
func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepositoryImpl {
	return &EmbeddingRepositoryImpl{db: db}
}

// Upsert stores an embedding, replacing any existing row for the same
// journal. A single atomic statement keyed on the journal_id unique index
// keeps the one-embedding-per-journal invariant even when two writes to the
// same journal race: whichever lands last wins.
// Raw SQL because GORM has no native support for ON CONFLICT over a vector
// column.
func (r *EmbeddingRepositoryImpl) Upsert(ctx context.Context, emb *models.JournalEmbedding) error {
	if emb.ID == "" {
		emb.ID = ksuid.New().String()
	}

	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO journal_embeddings (id, journal_id, user_id, content, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (journal_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()
	`, emb.ID, emb.JournalID, emb.UserID, emb.Content, emb.Embedding).Error

	if err != nil {
		return fmt.Errorf("failed to upsert embedding: %w", err)
	}
	return nil
}

// DeleteByJournalID removes the embedding for a journal. Deleting a journal
// with no embedding is a no-op, not an error.
func (r *EmbeddingRepositoryImpl) DeleteByJournalID(ctx context.Context, journalID string) error {
	err := r.db.WithContext(ctx).Exec(`
		DELETE FROM journal_embeddings WHERE journal_id = ?
	`, journalID).Error

	if err != nil {
		return fmt.Errorf("failed to delete embedding: %w", err)
	}
	return nil
}

// Search performs cosine similarity search scoped to one user.
// The <=> operator from pgvector is cosine distance; similarity is
// 1 - distance. Results are ordered most-similar first with journal_id as a
// deterministic tie break, filtered to the similarity floor, capped at limit.
func (r *EmbeddingRepositoryImpl) Search(ctx context.Context, userID string, queryEmbedding []float32, limit int, minSimilarity float64) ([]models.RetrievalMatch, error) {
	vec := pgvector.NewVector(queryEmbedding)

	var matches []models.RetrievalMatch
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			journal_id,
			content,
			1 - (embedding <=> ?) AS similarity
		FROM journal_embeddings
		WHERE user_id = ?
			AND 1 - (embedding <=> ?) >= ?
		ORDER BY embedding <=> ?, journal_id
		LIMIT ?
	`, vec, userID, vec, minSimilarity, vec, limit).Scan(&matches).Error

	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}
	return matches, nil
}
