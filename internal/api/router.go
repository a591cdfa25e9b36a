package api

import (
	"journalmind/internal/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Middleware order: tracing first, then recovery, then CORS.
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.ErrorRecoveryMiddleware)
	r.Use(middleware.CORSMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	// Journal write path hooks (fire-and-forget indexing)
	api.HandleFunc("/journals/{id}/embedding", h.EmbedJournal).Methods("POST")
	api.HandleFunc("/journals/{id}/embedding", h.EvictJournal).Methods("DELETE")

	// Retrieval and question answering
	api.HandleFunc("/search", h.SearchJournals).Methods("POST")
	api.HandleFunc("/chat", h.Chat).Methods("POST")

	api.HandleFunc("/health", h.Health).Methods("GET")

	return r
}
