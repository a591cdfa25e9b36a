package services

import (
	"context"
	"fmt"
	"strings"

	"journalmind/internal/middleware"
	"journalmind/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// NoRelevantEntriesAnswer is the fixed answer returned when nothing in the
// user's journals clears the similarity floor. It is a terminal state of a
// successful query, not an error.
const NoRelevantEntriesAnswer = "I couldn't find relevant information in your journals to answer this question."

const answerSystemPrompt = `You are a helpful assistant that answers questions based on the user's journal entries.
Use the provided journal content to answer questions accurately and thoughtfully.
If the information isn't in the journals, say you don't have that information.
Be conversational, friendly, and insightful.`

// contextDelimiter separates journal entries inside the generation context.
const contextDelimiter = "\n\n---\n\n"

// excerptLength is how much of a matched entry ends up in provenance.
const excerptLength = 150

// RAGService answers questions about a user's journals: retrieve the
// relevant entries, then generate an answer grounded in them, returning the
// entries used as provenance.
type RAGService struct {
	retriever *RetrieverService
	chat      CompletionClient
}

// NewRAGService creates a RAG service over the retriever and a completion
// client.
func NewRAGService(retriever *RetrieverService, chat CompletionClient) *RAGService {
	return &RAGService{
		retriever: retriever,
		chat:      chat,
	}
}

// Answer runs the full pipeline for one question. Retrieval and generation
// failures propagate as RetrievalError and SynthesisError respectively; a
// question no journal entry can answer yields the fixed no-information
// answer with empty sources.
func (s *RAGService) Answer(ctx context.Context, userID, question string) (*models.AnswerResult, error) {
	ctx, span := middleware.StartSpan(ctx, "RAG.Answer",
		attribute.String("user.id", userID),
		attribute.Int("question_length", len(question)),
	)
	defer span.End()

	// Non-positive limit and floor defer to the retriever's configured
	// defaults.
	matches, err := s.retriever.Retrieve(ctx, userID, question, 0, 0)
	if err != nil {
		middleware.AddSpanError(ctx, err)
		return nil, err
	}

	if len(matches) == 0 {
		middleware.AddSpanEvent(ctx, "no_relevant_entries")
		return &models.AnswerResult{
			Answer:  NoRelevantEntriesAnswer,
			Sources: []models.AnswerSource{},
		}, nil
	}

	contextParts := make([]string, len(matches))
	for i, m := range matches {
		contextParts[i] = m.Content
	}
	prompt := fmt.Sprintf("Journal entries for context:\n%s\n\nUser Question: %s",
		strings.Join(contextParts, contextDelimiter), question)

	answer, err := s.chat.ChatCompletion(ctx, answerSystemPrompt, prompt)
	if err != nil {
		wrapped := &SynthesisError{Err: fmt.Errorf("failed to generate answer: %w", err)}
		middleware.AddSpanError(ctx, wrapped)
		return nil, wrapped
	}

	sources := make([]models.AnswerSource, len(matches))
	for i, m := range matches {
		sources[i] = models.AnswerSource{
			JournalID:  m.JournalID,
			Similarity: m.Similarity,
			Excerpt:    excerpt(m.Content),
		}
	}

	middleware.AddSpanEvent(ctx, "answer_completed",
		attribute.Int("context_entries", len(matches)),
		attribute.Int("answer_length", len(answer)),
	)

	return &models.AnswerResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// excerpt truncates content for provenance display.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}
