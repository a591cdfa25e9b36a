package services

import "fmt"

// The three failure kinds callers must be able to tell apart. An empty
// retrieval result is a success, never one of these: callers distinguish
// "nothing relevant" from "the infrastructure broke" by error type alone.

// EmbeddingError reports a failed embed or evict. The journal write path
// logs it and carries on - embedding is auxiliary state and never rolls back
// the primary write.
type EmbeddingError struct {
	JournalID string
	Err       error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding journal %s: %v", e.JournalID, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// RetrievalError reports that query embedding or similarity search failed.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving journals: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// SynthesisError reports that answer generation failed. It always
// propagates: converting it into an empty or fabricated answer would be
// indistinguishable from the legitimate zero-match case.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesizing answer: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
