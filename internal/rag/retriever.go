package rag

import (
	"context"
	"sort"
	"strings"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/storage"
	"klyra-ai/internal/vectorstore"
)

// Embedder computes an embedding vector for a single text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChunkSource supplies the chunk corpus for keyword search.
type ChunkSource interface {
	ListAll(ctx context.Context) ([]storage.ChunkRecord, error)
	Count(ctx context.Context) (int, error)
}

// intentTriggerTerms extends the keyword set with domain terms for detected intents.
var intentTriggerTerms = map[string][]string{
	"leadership": {"team", "leadership", "executive"},
	"sales":      {"sales", "pricing", "customer"},
	"technical":  {"technical", "documentation", "system"},
}

// Retriever merges a semantic similarity search with an independent keyword
// search over the full chunk corpus.
type Retriever struct {
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunks      ChunkSource
}

// NewRetriever creates a hybrid retriever.
func NewRetriever(embedder Embedder, vectorStore vectorstore.VectorStore, collection string, chunks ChunkSource) *Retriever {
	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunks:      chunks,
	}
}

// Retrieve runs both branches and merges them. Retrieval-layer failures are
// caught here and degrade to an empty result set; they never reach the
// user-facing flow.
func (r *Retriever) Retrieve(ctx context.Context, analysis QueryAnalysis, topK int) []RetrievalResult {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		topK = defaultTopK
	}

	// Nothing to search against.
	count, err := r.chunks.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count corpus chunks, continuing without retrieval", "error", err)
		return nil
	}
	if count == 0 {
		return nil
	}

	// Semantic branch. An embedding or vector-store failure empties the
	// whole result set; the assembler then routes to general knowledge.
	vector, err := r.embedder.EmbedText(ctx, analysis.EmbeddingQuery)
	if err != nil {
		logger.ErrorContext(ctx, "embedding failed, continuing without retrieval", "error", err)
		return nil
	}

	hits, err := r.vectorStore.Query(ctx, r.collection, vector, topK)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed, continuing without retrieval", "error", err)
		return nil
	}

	merged := make([]RetrievalResult, 0, topK)
	seen := make(map[string]struct{}, len(hits))
	for _, hit := range hits {
		name, _ := hit.Meta["document_name"].(string)
		if name == "" {
			// Malformed metadata is skipped from ranking, not raised.
			logger.WarnContext(ctx, "skipping chunk with missing document name", "point_id", hit.PointID)
			continue
		}
		headerPath, _ := hit.Meta["header_path"].(string)
		merged = append(merged, RetrievalResult{
			DocumentName: name,
			ChunkText:    hit.Text,
			HeaderPath:   headerPath,
			Score:        float64(1 - hit.Distance),
		})
		seen[dedupKey(hit.Text)] = struct{}{}
	}

	// Keyword branch over the full corpus. A corpus listing failure costs
	// only this branch.
	keywordHits := r.keywordSearch(ctx, analysis)
	for _, hit := range keywordHits {
		if _, dup := seen[dedupKey(hit.chunk.Text)]; dup {
			continue
		}
		if hit.score < keywordScoreFloor {
			continue
		}
		// Remap into a confidence band below pure high-semantic scores so
		// keyword hits surface novel documents without outranking them.
		mapped := keywordBandBase + keywordBandScale*hit.score
		if mapped > keywordBandBase+keywordBandScale {
			mapped = keywordBandBase + keywordBandScale
		}
		merged = append(merged, RetrievalResult{
			DocumentName: hit.chunk.DocumentName,
			ChunkText:    hit.chunk.Text,
			HeaderPath:   hit.chunk.HeaderPath,
			Score:        mapped,
		})
		seen[dedupKey(hit.chunk.Text)] = struct{}{}
	}

	// Deterministic ranking: stable sort preserves merge-insertion order for
	// equal scores.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}

	logger.DebugContext(ctx, "hybrid retrieval completed",
		"semantic_hits", len(hits),
		"keyword_hits", len(keywordHits),
		"merged", len(merged),
	)
	return merged
}

type keywordHit struct {
	chunk      storage.ChunkRecord
	score      float64
	rawMatches int
}

// keywordSearch scores every corpus chunk against the original (unexpanded)
// query: phrase matches, keyword coverage, document-name matches, and a
// category bonus, weighted per the tuning constants.
func (r *Retriever) keywordSearch(ctx context.Context, analysis QueryAnalysis) []keywordHit {
	logger := contextutil.LoggerFromContext(ctx)

	keywords := keywordTokens(analysis.KeywordQuery)
	if len(keywords) == 0 {
		return nil
	}

	// Append domain trigger terms for the detected intent.
	if extra, ok := intentTriggerTerms[analysis.Category]; ok {
		present := make(map[string]struct{}, len(keywords))
		for _, kw := range keywords {
			present[kw] = struct{}{}
		}
		for _, term := range extra {
			if _, dup := present[term]; !dup {
				keywords = append(keywords, term)
			}
		}
	}

	corpus, err := r.chunks.ListAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list corpus chunks, skipping keyword branch", "error", err)
		return nil
	}

	phrase := strings.Join(keywords, " ")

	var hits []keywordHit
	for _, chunk := range corpus {
		if chunk.DocumentName == "" {
			continue
		}

		text := strings.ToLower(chunk.Text)
		name := strings.ToLower(chunk.DocumentName)

		phraseMatches := 0
		if len(keywords) >= 2 {
			phraseMatches = strings.Count(text, phrase)
		}

		matched := 0
		rawMatches := 0
		nameMatches := 0
		for _, kw := range keywords {
			occurrences := strings.Count(text, kw)
			if occurrences > 0 {
				matched++
				rawMatches += occurrences
			}
			if strings.Contains(name, kw) {
				nameMatches++
			}
		}

		coverage := float64(matched) / float64(len(keywords))

		score := float64(phraseMatches)*phraseMatchWeight +
			coverage*keywordCoverageWeight +
			float64(nameMatches)*docNameMatchWeight
		if analysis.Category != "" && chunk.Category == analysis.Category {
			score += categoryMatchBonus
		}

		if score <= 0 {
			continue
		}
		hits = append(hits, keywordHit{chunk: chunk, score: score, rawMatches: rawMatches})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].rawMatches > hits[j].rawMatches
	})
	if len(hits) > keywordCandidateLimit {
		hits = hits[:keywordCandidateLimit]
	}
	return hits
}
