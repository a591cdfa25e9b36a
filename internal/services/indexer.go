package services

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// IndexOp says what an index job should do to a journal's embedding.
type IndexOp int

const (
	// OpReindex replaces the journal's embedding with one computed from the
	// job's content. Used on journal create and update.
	OpReindex IndexOp = iota
	// OpEvict removes the journal's embedding. Used on journal delete.
	OpEvict
)

// IndexJob is one unit of embedding maintenance queued by the journal write
// path.
type IndexJob struct {
	Op        IndexOp
	JournalID string
	UserID    string
	Content   string
}

// Indexer decouples embedding maintenance from the journal write path. The
// primary write commits first and submits a job; a fixed pool of workers
// drains the queue. Job failures are logged and recorded, never returned to
// the submitter - a journal may transiently lack an embedding after a failed
// job, and nothing repairs that automatically.
type Indexer struct {
	embedder *EmbedderService

	jobs    chan IndexJob
	workers int
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewIndexer creates the worker pool without starting it.
func NewIndexer(embedder *EmbedderService, numWorkers, queueSize int) *Indexer {
	return &Indexer{
		embedder: embedder,
		jobs:     make(chan IndexJob, queueSize),
		workers:  numWorkers,
	}
}

// Start spawns the workers.
func (s *Indexer) Start() {
	log.Printf("starting index worker pool with %d workers", s.workers)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
}

func (s *Indexer) worker(id int) {
	defer s.wg.Done()

	// Ranging over the channel drains every queued job before the worker
	// exits on close.
	for job := range s.jobs {
		if err := s.process(job); err != nil {
			// Logged, not propagated: embedding is best-effort auxiliary
			// state relative to the journal write.
			log.Printf("index worker %d: journal %s: %v", id, job.JournalID, err)
		}
	}
}

// Submit queues a job, blocking if the queue is full. It fails only when the
// indexer is shutting down.
func (s *Indexer) Submit(job IndexJob) error {
	// The send happens under the lock so Shutdown cannot close the channel
	// between the closed check and the send. Workers drain without taking
	// the lock, so a full queue still unblocks.
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("indexer is shutting down")
	}
	s.jobs <- job
	return nil
}

func (s *Indexer) process(job IndexJob) error {
	ctx := context.Background()

	switch job.Op {
	case OpEvict:
		return s.embedder.Evict(ctx, job.JournalID)

	case OpReindex:
		// Evict then embed; the store's upsert keeps the
		// one-embedding-per-journal invariant even if this pair races with
		// another reindex of the same journal.
		if err := s.embedder.Evict(ctx, job.JournalID); err != nil {
			return err
		}
		_, err := s.embedder.Embed(ctx, job.JournalID, job.UserID, job.Content)
		return err

	default:
		return fmt.Errorf("unknown index op %d", job.Op)
	}
}

// Shutdown stops accepting jobs and waits for the workers to drain
// everything already queued.
func (s *Indexer) Shutdown() {
	log.Println("shutting down index worker pool")

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.jobs)
	s.wg.Wait()
}

// QueueLength reports pending jobs, for monitoring.
func (s *Indexer) QueueLength() int {
	return len(s.jobs)
}
