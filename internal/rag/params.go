package rag

// Pipeline thresholds. Several of these moved across tuning iterations
// (the relevance gate, the citation acceptance band, the context chunk cap),
// so every one is a named constant or option rather than an inline literal.
const (
	// Confidence bands over the top retrieval score.
	confidenceHighThreshold   = 0.75
	confidenceMediumThreshold = 0.60
	confidenceLowThreshold    = 0.45

	// Corroboration boost: ≥3 results at or above the medium threshold.
	corroborationMinResults = 3
	corroborationBoost      = 0.1

	// Ambiguity: a second document whose best score is within this fraction
	// of the leader's best score.
	ambiguityBand    = 0.90
	maxAmbiguousDocs = 3

	// Keyword branch scoring weights.
	phraseMatchWeight     = 0.4
	keywordCoverageWeight = 0.3
	docNameMatchWeight    = 0.15
	categoryMatchBonus    = 0.1

	// Keyword merge: hits below the floor never enter the merged set; hits
	// above it are remapped into a band below pure high-semantic scores.
	keywordScoreFloor     = 0.15
	keywordBandBase       = 0.4
	keywordBandScale      = 0.4
	keywordCandidateLimit = 10

	// Dedup key between semantic and keyword branches.
	dedupPrefixLen = 100

	// Query analysis.
	shortQueryTokenLimit = 6
	historyScanTurns     = 6
	bulkWordLimit        = 150
	bulkSummaryWordLimit = 80

	// Citation validation. The acceptance band moved from 50% to 80% of the
	// best document's overlap.
	citationMinOverlap = 3
	citationAcceptBand = 0.80
)

// Options configures the deployment-tunable parts of the engine.
// Zero values fall back to the defaults below.
type Options struct {
	TopK             int     // retrieval depth per query
	RelevanceGate    float64 // minimum score for a chunk to enter a prompt
	MaxContextChunks int     // hard cap on chunks per prompt
	HistoryWindow    int     // conversation turns rendered into a prompt
}

const (
	defaultTopK             = 8
	defaultRelevanceGate    = 0.55
	defaultMaxContextChunks = 8
	defaultHistoryWindow    = 10
)

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	if o.RelevanceGate <= 0 {
		o.RelevanceGate = defaultRelevanceGate
	}
	if o.MaxContextChunks <= 0 {
		o.MaxContextChunks = defaultMaxContextChunks
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = defaultHistoryWindow
	}
	return o
}
