package rag

// ConversationTurn is a single prior message in the chat, supplied by the caller.
type ConversationTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// RetrievalResult is one retrieved chunk with its relevance score.
// Results are produced fresh per query and never persisted.
type RetrievalResult struct {
	DocumentName string  `json:"document_name"`
	ChunkText    string  `json:"chunk_text"`
	HeaderPath   string  `json:"header_path,omitempty"`
	Score        float64 `json:"score"`
}

// ConfidenceLevel is a coarse banding of retrieval quality.
type ConfidenceLevel string

const (
	ConfidenceNone   ConfidenceLevel = "none"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// RetrievalMetadata describes how a query plan was built. It is computed once
// per query and returned to the caller for UI and telemetry use.
type RetrievalMetadata struct {
	ConfidenceScore       float64         `json:"confidence_score"`
	ConfidenceLevel       ConfidenceLevel `json:"confidence_level"`
	IsAmbiguous           bool            `json:"is_ambiguous"`
	AmbiguousDocs         []string        `json:"ambiguous_docs,omitempty"`
	QueryCategory         string          `json:"query_category,omitempty"`
	UsedGeneralKnowledge  bool            `json:"used_general_knowledge"`
	IsUserProvidedContent bool            `json:"is_user_provided_content"`
}

// Plan is the output of query planning, consumed by the caller before
// generation. Candidates carries every merged retrieval result (gated or
// not); the Citation Validator needs them after generation.
type Plan struct {
	Prompt       string            `json:"prompt"`
	IncludedDocs []string          `json:"included_docs"`
	Candidates   []RetrievalResult `json:"candidates"`
	Metadata     RetrievalMetadata `json:"metadata"`
}
