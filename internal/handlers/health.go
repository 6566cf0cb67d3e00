package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/vectorstore"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	vectorStore        vectorstore.VectorStore
	collection         string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(vectorStore vectorstore.VectorStore, collection string) *HealthHandler {
	return &HealthHandler{
		vectorStore:        vectorStore,
		collection:         collection,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
	Issues    []string          `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks. Returns 200 when
// healthy, 503 when a dependency is unavailable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if _, err := h.vectorStore.Count(checkCtx, h.collection); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	} else {
		checks["vector_store"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
