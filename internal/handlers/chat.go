package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/rag"
	"klyra-ai/internal/service"
	"klyra-ai/internal/storage"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatTurn is one prior message supplied by the client.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the HTTP request payload for chat.
type ChatRequest struct {
	Message string     `json:"message"`
	History []ChatTurn `json:"history,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Reply    string                `json:"reply"`
	Sources  []string              `json:"sources"`
	Metadata rag.RetrievalMetadata `json:"metadata"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// streamEvent is a single SSE payload. Token events carry one generation
// token; the final event carries the finalized reply with its sources.
type streamEvent struct {
	Token    string                 `json:"token,omitempty"`
	Done     bool                   `json:"done,omitempty"`
	Reply    string                 `json:"reply,omitempty"`
	Sources  []string               `json:"sources,omitempty"`
	Metadata *rag.RetrievalMetadata `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// ServeHTTP handles HTTP requests for chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	svcReq := service.ChatRequest{
		Message: req.Message,
		History: historyToTurns(req.History),
	}

	if r.URL.Query().Get("stream") == "true" {
		h.handleStreamingChat(w, r, svcReq)
		return
	}

	svcResp, err := h.chatService.ProcessChat(ctx, svcReq)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to process chat request")
		return
	}

	resp := ChatResponse{
		Reply:    svcResp.Reply,
		Sources:  svcResp.CitedDocs,
		Metadata: svcResp.Metadata,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleStreamingChat streams the response using Server-Sent Events. Tokens
// are forwarded as they arrive; once generation completes, the finalized
// reply (with its validated sources footer) is sent as the last data event
// before [DONE]. Clients replace the accumulated token text with that reply.
func (h *ChatHandler) handleStreamingChat(w http.ResponseWriter, r *http.Request, svcReq service.ChatRequest) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	result, err := h.chatService.StreamChat(ctx, svcReq, func(token string) error {
		return writeEvent(w, flusher, streamEvent{Token: token})
	})

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.DebugContext(ctx, "client disconnected during stream")
			return
		}
		logger.ErrorContext(ctx, "error streaming chat", "error", err)
		_ = writeEvent(w, flusher, streamEvent{Error: err.Error()})
		return
	}

	_ = writeEvent(w, flusher, streamEvent{
		Done:     true,
		Reply:    result.Reply,
		Sources:  result.CitedDocs,
		Metadata: &result.Metadata,
	})
	_, _ = fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// writeEvent writes one JSON-encoded SSE data event and flushes it.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, ev streamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// historyToTurns converts the HTTP history payload to conversation turns.
func historyToTurns(history []ChatTurn) []rag.ConversationTurn {
	if len(history) == 0 {
		return nil
	}
	turns := make([]rag.ConversationTurn, 0, len(history))
	for _, t := range history {
		turns = append(turns, rag.ConversationTurn{
			Role:    t.Role,
			Content: t.Content,
		})
	}
	return turns
}

// handleServiceError maps service errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "service error", "error", err)

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", validationErr.Error()))
		return
	}

	if errors.Is(err, service.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if errors.Is(err, service.ErrNotFound) || errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}

	if errors.Is(err, service.ErrExternalService) {
		writeError(w, http.StatusBadGateway, "External service error")
		return
	}

	writeError(w, http.StatusInternalServerError, defaultMsg)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
