package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks klyra-ai/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService klyra-ai/internal/service ChatService

import (
	"context"
	"errors"
	"strings"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/llm"
	"klyra-ai/internal/rag"
)

// LLMClient is an interface for the generation service.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// ChatWithMessages sends a chat completion request and returns the full reply.
	ChatWithMessages(ctx context.Context, systemPrompt string, messages []llm.Message, params llm.ChatParams) (string, error)
	// StreamChat streams the reply token by token via callback.
	StreamChat(ctx context.Context, systemPrompt string, messages []llm.Message, params llm.ChatParams, callback func(token string) error) error
}

// ChatRequest represents a chat request in the domain layer.
type ChatRequest struct {
	Message string `validate:"required"`
	History []rag.ConversationTurn
}

// ChatResult is the outcome of one chat turn after citation validation.
type ChatResult struct {
	// Reply is the cleaned response with the validated Sources footer.
	Reply string
	// CitedDocs are the documents whose text supports the reply.
	CitedDocs []string
	// Metadata describes how the query plan was built.
	Metadata rag.RetrievalMetadata
}

// ChatService provides retrieval-augmented chat.
type ChatService interface {
	// ProcessChat answers a chat request and returns the finalized response.
	ProcessChat(ctx context.Context, req ChatRequest) (ChatResult, error)
	// StreamChat forwards generation tokens via callback as they arrive while
	// accumulating the full text, then runs citation validation on the
	// complete response. The returned ChatResult carries the finalized reply,
	// which the caller presents in place of the raw accumulated stream.
	StreamChat(ctx context.Context, req ChatRequest, callback func(token string) error) (ChatResult, error)
}

// chatService implements ChatService.
type chatService struct {
	engine    rag.Engine
	llmClient LLMClient
}

// NewChatService creates a new ChatService.
func NewChatService(engine rag.Engine, llmClient LLMClient) ChatService {
	return &chatService{
		engine:    engine,
		llmClient: llmClient,
	}
}

// ProcessChat answers a chat request without streaming.
func (s *chatService) ProcessChat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	plan, err := s.plan(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}

	messages := []llm.Message{{Role: "user", Content: req.Message}}
	reply, err := s.llmClient.ChatWithMessages(ctx, plan.Prompt, messages, llm.ChatParams{Temperature: 0.7})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return ChatResult{}, WrapExternal(err, "failed to get LLM response")
	}

	final, cited := s.engine.FinalizeResponse(reply, plan.Candidates)

	logger.InfoContext(ctx, "chat request processed", "reply_length", len(final), "cited_docs", len(cited))
	return ChatResult{Reply: final, CitedDocs: cited, Metadata: plan.Metadata}, nil
}

// StreamChat streams the reply while accumulating it, then validates
// citations over the complete text. Citation validation is not incremental;
// it cannot run until the stream finishes. If the client cancels mid-stream,
// token consumption stops and no citation validation is attempted.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest, callback func(token string) error) (ChatResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	plan, err := s.plan(ctx, req)
	if err != nil {
		return ChatResult{}, err
	}

	var accumulated strings.Builder
	messages := []llm.Message{{Role: "user", Content: req.Message}}
	err = s.llmClient.StreamChat(ctx, plan.Prompt, messages, llm.ChatParams{Temperature: 0.7}, func(token string) error {
		accumulated.WriteString(token)
		return callback(token)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.InfoContext(ctx, "stream cancelled by client", "accumulated_length", accumulated.Len())
			return ChatResult{}, err
		}
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return ChatResult{}, WrapExternal(err, "failed to stream LLM response")
	}

	final, cited := s.engine.FinalizeResponse(accumulated.String(), plan.Candidates)

	logger.InfoContext(ctx, "streaming chat request processed", "reply_length", len(final), "cited_docs", len(cited))
	return ChatResult{Reply: final, CitedDocs: cited, Metadata: plan.Metadata}, nil
}

// plan validates the request and builds the query plan.
func (s *chatService) plan(ctx context.Context, req ChatRequest) (rag.Plan, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return rag.Plan{}, &ValidationError{
			Field:   "message",
			Message: "cannot be empty",
		}
	}

	plan, err := s.engine.BuildQueryPlan(ctx, req.Message, req.History)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build query plan", "error", err)
		return rag.Plan{}, WrapError(err, "failed to build query plan")
	}
	return plan, nil
}
