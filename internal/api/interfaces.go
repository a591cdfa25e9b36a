package api

import (
	"context"

	"journalmind/internal/models"
	"journalmind/internal/services"
)

// Handlers consume the services, so the interfaces they need live here and
// declare only the methods the handlers call.

// IndexService queues embedding maintenance for journal writes.
type IndexService interface {
	Submit(job services.IndexJob) error
	QueueLength() int
}

// SearchService runs scoped similarity search for a user's journals.
type SearchService interface {
	Retrieve(ctx context.Context, userID, query string, limit int, minSimilarity float64) ([]models.RetrievalMatch, error)
}

// AnswerService answers a question from a user's journals.
type AnswerService interface {
	Answer(ctx context.Context, userID, question string) (*models.AnswerResult, error)
}
