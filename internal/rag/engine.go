package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks klyra-ai/internal/rag Engine

import (
	"context"
	"fmt"
	"strings"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/vectorstore"
)

// Engine is the core's boundary: query planning before generation and
// citation validation after it.
type Engine interface {
	// BuildQueryPlan analyzes the query, retrieves and ranks context, scores
	// confidence, and renders the prompt for the generation service.
	BuildQueryPlan(ctx context.Context, query string, history []ConversationTurn) (Plan, error)

	// FinalizeResponse validates which candidate documents textually support
	// the complete generated response and appends the citation footer. It is
	// pure over its inputs and never fails.
	FinalizeResponse(response string, candidates []RetrievalResult) (string, []string)
}

type engine struct {
	retriever *Retriever
	assembler *Assembler
	validator *Validator
	opts      Options
}

// NewEngine creates the retrieval-augmented planning engine.
func NewEngine(embedder Embedder, vectorStore vectorstore.VectorStore, collection string, chunks ChunkSource, opts Options) Engine {
	opts = opts.withDefaults()
	return &engine{
		retriever: NewRetriever(embedder, vectorStore, collection, chunks),
		assembler: NewAssembler(opts.RelevanceGate, opts.MaxContextChunks, opts.HistoryWindow),
		validator: NewValidator(),
		opts:      opts,
	}
}

// BuildQueryPlan runs the query path: analyze, retrieve, score, assemble.
func (e *engine) BuildQueryPlan(ctx context.Context, query string, history []ConversationTurn) (Plan, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(query) == "" {
		return Plan{}, fmt.Errorf("query is required")
	}

	analysis := AnalyzeQuery(query, history)

	var results []RetrievalResult
	if !analysis.IsBulkContent {
		results = e.retriever.Retrieve(ctx, analysis, e.opts.TopK)
	}

	report := evaluateConfidence(results)

	prompt, includedDocs, usedGeneral := e.assembler.Assemble(results, history, analysis.IsBulkContent)

	metadata := RetrievalMetadata{
		ConfidenceScore:       report.Score,
		ConfidenceLevel:       report.Level,
		IsAmbiguous:           report.IsAmbiguous,
		AmbiguousDocs:         report.AmbiguousDocs,
		QueryCategory:         analysis.Category,
		UsedGeneralKnowledge:  usedGeneral,
		IsUserProvidedContent: analysis.IsBulkContent,
	}

	logger.InfoContext(ctx, "query plan built",
		"category", analysis.Category,
		"candidates", len(results),
		"included_docs", len(includedDocs),
		"confidence_level", report.Level,
		"confidence_score", report.Score,
		"top_score", report.TopScore,
		"mean_score", report.MeanScore,
		"ambiguous", report.IsAmbiguous,
		"general_knowledge", usedGeneral,
		"bulk_content", analysis.IsBulkContent,
	)

	return Plan{
		Prompt:       prompt,
		IncludedDocs: includedDocs,
		Candidates:   results,
		Metadata:     metadata,
	}, nil
}

// FinalizeResponse delegates to the citation validator.
func (e *engine) FinalizeResponse(response string, candidates []RetrievalResult) (string, []string) {
	return e.validator.Validate(response, candidates)
}
