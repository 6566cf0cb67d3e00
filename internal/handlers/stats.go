package handlers

import (
	"encoding/json"
	"net/http"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/storage"
	"klyra-ai/internal/vectorstore"
)

// StatsHandler reports corpus size figures.
type StatsHandler struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	vectorStore vectorstore.VectorStore
	collection  string
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(docRepo storage.DocumentStore, chunkRepo storage.ChunkStore, vectorStore vectorstore.VectorStore, collection string) *StatsHandler {
	return &StatsHandler{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		vectorStore: vectorStore,
		collection:  collection,
	}
}

// StatsResponse represents the corpus statistics payload.
type StatsResponse struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
	VectorCount   int `json:"vector_count"`
}

// ServeHTTP handles HTTP requests for corpus statistics. Chunk and vector
// counts should match; a mismatch points at an interrupted ingestion.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to load documents")
		return
	}

	chunkCount, err := h.chunkRepo.Count(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to count chunks")
		return
	}

	vectorCount, err := h.vectorStore.Count(ctx, h.collection)
	if err != nil {
		logger.WarnContext(ctx, "vector count unavailable", "error", err)
		vectorCount = -1
	}

	resp := StatsResponse{
		DocumentCount: len(docs),
		ChunkCount:    chunkCount,
		VectorCount:   vectorCount,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode stats response", "error", err)
	}
}
