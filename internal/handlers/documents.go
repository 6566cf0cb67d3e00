package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/indexer"
	"klyra-ai/internal/storage"
)

// DocumentsHandler handles document ingestion and management requests.
type DocumentsHandler struct {
	pipeline *indexer.Pipeline
	docRepo  storage.DocumentStore
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(pipeline *indexer.Pipeline, docRepo storage.DocumentStore) *DocumentsHandler {
	return &DocumentsHandler{
		pipeline: pipeline,
		docRepo:  docRepo,
	}
}

// IngestRequest represents the HTTP request payload for document ingestion.
type IngestRequest struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Format   string `json:"format,omitempty"`
	Content  string `json:"content"`
}

// DocumentResponse represents a stored document.
type DocumentResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  string `json:"created_at"`
}

// Create ingests a new document: segmentation, embedding, and storage happen
// before the response is written, so a 201 means the document is queryable.
func (h *DocumentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Document name is required")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Document content is required")
		return
	}

	doc, err := h.pipeline.ProcessDocument(ctx, indexer.IngestRequest{
		Name:     req.Name,
		Category: req.Category,
		Format:   req.Format,
		Content:  req.Content,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to ingest document")
		return
	}

	logger.InfoContext(ctx, "document ingested",
		"document_id", doc.ID,
		"name", doc.Name,
		"chunks", doc.ChunkCount,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(documentToResponse(doc))
}

// List returns all stored documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.docRepo.ListAll(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, documentToResponse(&docs[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Delete removes a document and all of its chunks and vectors.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document id is required")
		return
	}

	if err := h.pipeline.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID)
	w.WriteHeader(http.StatusNoContent)
}

// Replace re-ingests a document under a fresh id, removing the old one first.
func (h *DocumentsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	documentID := chi.URLParam(r, "id")
	if documentID == "" {
		writeError(w, http.StatusBadRequest, "Document id is required")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.pipeline.ReplaceDocument(ctx, documentID, indexer.IngestRequest{
		Name:     req.Name,
		Category: req.Category,
		Format:   req.Format,
		Content:  req.Content,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		handleServiceError(w, ctx, err, "Failed to replace document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(documentToResponse(doc))
}

func documentToResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:         doc.ID,
		Name:       doc.Name,
		Category:   doc.Category,
		ChunkCount: doc.ChunkCount,
		CreatedAt:  doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
