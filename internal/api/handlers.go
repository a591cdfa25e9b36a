package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"journalmind/internal/middleware"
	"journalmind/internal/services"

	"github.com/gorilla/mux"
)

// Handler exposes the retrieval engine over HTTP. The journal write path of
// the host application calls the embedding endpoints; end users hit /chat.
type Handler struct {
	indexer  IndexService
	searcher SearchService
	answerer AnswerService
}

func NewHandler(indexer IndexService, searcher SearchService, answerer AnswerService) *Handler {
	return &Handler{
		indexer:  indexer,
		searcher: searcher,
		answerer: answerer,
	}
}

type embedRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// EmbedJournal queues (re)indexing of a journal entry. The response reports
// only that the job was accepted: indexing is fire-and-forget relative to
// the journal write, and a failed job never fails the write that queued it.
func (h *Handler) EmbedJournal(w http.ResponseWriter, r *http.Request) {
	journalID := mux.Vars(r)["id"]

	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	// Compose the single string that gets embedded, the same shape the
	// journal editor produces.
	content := fmt.Sprintf("Title: %s\n\nContent: %s", req.Title, req.Content)

	job := services.IndexJob{
		Op:        services.OpReindex,
		JournalID: journalID,
		UserID:    req.UserID,
		Content:   content,
	}
	if err := h.indexer.Submit(job); err != nil {
		writeError(w, http.StatusServiceUnavailable, "indexing unavailable")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// EvictJournal queues removal of a deleted journal's embedding.
func (h *Handler) EvictJournal(w http.ResponseWriter, r *http.Request) {
	journalID := mux.Vars(r)["id"]

	job := services.IndexJob{
		Op:        services.OpEvict,
		JournalID: journalID,
	}
	if err := h.indexer.Submit(job); err != nil {
		writeError(w, http.StatusServiceUnavailable, "indexing unavailable")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

type searchRequest struct {
	UserID        string  `json:"user_id"`
	Query         string  `json:"query"`
	Limit         int     `json:"limit"`
	MinSimilarity float64 `json:"min_similarity"`
}

// SearchJournals runs a similarity search. An empty match list is a normal
// 200; only an infrastructure failure produces an error status.
func (h *Handler) SearchJournals(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	matches, err := h.searcher.Retrieve(r.Context(), req.UserID, req.Query, req.Limit, req.MinSimilarity)
	if err != nil {
		log.Printf("[%s] search failed: %v", middleware.GetRequestID(r.Context()), err)
		writeError(w, http.StatusBadGateway, "Failed to search journals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

type chatRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

// Chat answers a question from the user's journals. Retrieval and synthesis
// failures collapse to one generic user-facing error; the log line keeps
// them distinguishable from each other and from the no-relevant-entries
// answer, which is a 200.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	result, err := h.answerer.Answer(r.Context(), req.UserID, req.Question)
	if err != nil {
		log.Printf("[%s] chat failed: %v", middleware.GetRequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "Failed to process question")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Health reports liveness plus the index queue depth.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"index_queue": h.indexer.QueueLength(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
