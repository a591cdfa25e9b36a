package services

import (
	"context"
	"math"
	"sort"
	"sync"

	"journalmind/internal/models"
)

// stubVectorClient returns canned vectors keyed by exact text.
type stubVectorClient struct {
	vectors map[string][]float32
	err     error

	mu    sync.Mutex
	calls []string
}

func (c *stubVectorClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.calls = append(c.calls, text)
	c.mu.Unlock()

	if c.err != nil {
		return nil, c.err
	}
	if v, ok := c.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

// stubCompletionClient records the last generation request.
type stubCompletionClient struct {
	response string
	err      error

	system string
	prompt string
	called bool
}

func (c *stubCompletionClient) ChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	c.called = true
	c.system = system
	c.prompt = prompt
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

// memoryEmbeddingRepo is an in-memory stand-in for the pgvector store with
// the same semantics: upsert keyed by journal ID, idempotent delete, and
// owner-scoped cosine search ordered by similarity descending with journal
// ID as tie break.
type memoryEmbeddingRepo struct {
	mu      sync.Mutex
	records map[string]*models.JournalEmbedding // keyed by journal ID

	upsertErr error
	deleteErr error
	searchErr error
}

func newMemoryRepo() *memoryEmbeddingRepo {
	return &memoryEmbeddingRepo{records: make(map[string]*models.JournalEmbedding)}
}

func (r *memoryEmbeddingRepo) Upsert(ctx context.Context, emb *models.JournalEmbedding) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *emb
	r.records[emb.JournalID] = &cp
	return nil
}

func (r *memoryEmbeddingRepo) DeleteByJournalID(ctx context.Context, journalID string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, journalID)
	return nil
}

func (r *memoryEmbeddingRepo) Search(ctx context.Context, userID string, queryEmbedding []float32, limit int, minSimilarity float64) ([]models.RetrievalMatch, error) {
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []models.RetrievalMatch
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		sim := cosineSimilarity(queryEmbedding, rec.Embedding.Slice())
		if sim < minSimilarity {
			continue
		}
		matches = append(matches, models.RetrievalMatch{
			JournalID:  rec.JournalID,
			Content:    rec.Content,
			Similarity: sim,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].JournalID < matches[j].JournalID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *memoryEmbeddingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func (r *memoryEmbeddingRepo) get(journalID string) *models.JournalEmbedding {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[journalID]
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
