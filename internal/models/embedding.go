package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the output dimensionality of the embedding model
// (OpenAI text-embedding-3-small). Query and document vectors must come from
// the same model or similarity scores are meaningless.
const EmbeddingDimensions = 1536

// JournalEmbedding is the vector-searchable unit for one journal entry.
// The unique index on JournalID enforces at most one live embedding per
// journal; replacement happens via upsert, never in-place mutation.
// Rows are hard-deleted: a soft-delete column would break the unique index
// across replacements.
type JournalEmbedding struct {
	ID        string          `json:"id" gorm:"type:char(27);primaryKey"`
	JournalID string          `json:"journal_id" gorm:"type:char(27);not null;uniqueIndex"`
	UserID    string          `json:"user_id" gorm:"type:char(27);not null;index"`
	Content   string          `json:"content" gorm:"type:text;not null"`
	Embedding pgvector.Vector `json:"embedding" gorm:"type:vector(1536);not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// RetrievalMatch is one similarity-search hit. Produced fresh per query,
// never persisted.
type RetrievalMatch struct {
	JournalID  string  `json:"journal_id" gorm:"column:journal_id"`
	Content    string  `json:"content" gorm:"column:content"`
	Similarity float64 `json:"similarity" gorm:"column:similarity"`
}

// AnswerSource records which journal entry backed part of an answer.
type AnswerSource struct {
	JournalID  string  `json:"journal_id"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// AnswerResult is a generated answer plus its provenance, ordered the same
// way as the retrieval results it was built from.
type AnswerResult struct {
	Answer  string         `json:"answer"`
	Sources []AnswerSource `json:"sources"`
}
