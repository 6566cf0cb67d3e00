package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"klyra-ai/internal/handlers"
	"klyra-ai/internal/indexer"
	"klyra-ai/internal/service"
	"klyra-ai/internal/storage"
	"klyra-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	ChatService service.ChatService
	Pipeline    *indexer.Pipeline
	DocRepo     storage.DocumentStore
	ChunkRepo   storage.ChunkStore
	VectorStore vectorstore.VectorStore
	Collection  string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	chatHandler := handlers.NewChatHandler(deps.ChatService)
	documentsHandler := handlers.NewDocumentsHandler(deps.Pipeline, deps.DocRepo)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)
	statsHandler := handlers.NewStatsHandler(deps.DocRepo, deps.ChunkRepo, deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentsHandler.Create)
			r.Get("/", documentsHandler.List)
			r.Put("/{id}", documentsHandler.Replace)
			r.Delete("/{id}", documentsHandler.Delete)
		})

		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
	})

	return r
}
