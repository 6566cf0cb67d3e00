package rag

import "strings"

// QueryAnalysis is the result of pre-retrieval query analysis.
type QueryAnalysis struct {
	// Original is the query exactly as the user typed it.
	Original string
	// Category is the first matching category from the priority list, or "".
	Category string
	// EmbeddingQuery is the expanded copy used only to compute the embedding.
	EmbeddingQuery string
	// KeywordQuery feeds the keyword branch: the original query, plus any
	// entity terms pulled in from recent conversation turns.
	KeywordQuery string
	// IsBulkContent flags pasted user content; retrieval is bypassed entirely.
	IsBulkContent bool
}

// categoryRule pairs a category with its trigger phrases. The slice order is
// the match priority: the first category with a trigger present in the
// lower-cased query wins. A map would not give first-match-wins semantics.
type categoryRule struct {
	category string
	triggers []string
}

var categoryRules = []categoryRule{
	{"hr-policy", []string{"vacation", "holiday", "leave", "pto", "sick day", "benefits", "handbook", "policy", "policies", "onboarding"}},
	{"leadership", []string{"ceo", "cto", "cfo", "coo", "founder", "leadership", "board", "director", "executive"}},
	{"sales", []string{"sales", "pricing", "price", "quote", "discount", "deal", "pipeline", "prospect"}},
	{"technical", []string{"api", "architecture", "deployment", "infrastructure", "server", "database", "integration", "security"}},
	{"product", []string{"product", "feature", "roadmap", "release", "version"}},
	{"contact", []string{"contact", "email", "phone", "address", "office"}},
}

// expansionRule appends topical phrases to the embedding-only query copy.
// Independent of category detection; every matching rule contributes.
type expansionRule struct {
	triggers  []string
	expansion string
}

var expansionRules = []expansionRule{
	{[]string{"who is", "ceo", "founder", "team", "manager", "head of"}, "leadership team executives staff"},
	{[]string{"product", "feature", "offering", "what do you sell"}, "products services offerings features"},
	{[]string{"how does", "api", "integrate", "setup", "configure"}, "technical documentation setup configuration"},
	{[]string{"contact", "reach", "email", "phone"}, "contact information email phone address"},
	{[]string{"price", "pricing", "cost", "quote"}, "pricing plans costs sales"},
}

// anaphoricPrefixes mark queries that lean on earlier conversation turns.
var anaphoricPrefixes = []string{"who is", "tell me about", "what about", "and the", "how about"}

// entityTriggers are the entity terms context enhancement can pull from
// recent conversation turns into the retrieval query.
var entityTriggers = []string{
	"ceo", "cto", "cfo", "coo", "founder", "director", "manager",
	"handbook", "policy", "roadmap", "pricing", "product", "team", "benefits",
}

// summarizationKeywords mark a pasted block the user wants processed, not asked about.
var summarizationKeywords = []string{"summarize", "summarise", "summary", "tldr", "tl;dr", "rewrite", "condense", "shorten", "proofread"}

// AnalyzeQuery classifies and rewrites the incoming query. The user-visible
// query is never modified; expansion applies only to the embedding copy and
// context enhancement only to the retrieval queries.
func AnalyzeQuery(query string, history []ConversationTurn) QueryAnalysis {
	analysis := QueryAnalysis{
		Original:       query,
		EmbeddingQuery: query,
		KeywordQuery:   query,
	}

	lower := strings.ToLower(query)

	analysis.IsBulkContent = detectBulkContent(lower)
	if analysis.IsBulkContent {
		return analysis
	}

	analysis.Category = detectCategory(lower)

	// Context enhancement feeds both retrieval branches.
	if entities := contextEntities(lower, history); len(entities) > 0 {
		suffix := " " + strings.Join(entities, " ")
		analysis.KeywordQuery += suffix
		analysis.EmbeddingQuery += suffix
	}

	// Expansion feeds the embedding branch only.
	for _, rule := range expansionRules {
		if matchesAny(lower, rule.triggers) {
			analysis.EmbeddingQuery += " " + rule.expansion
		}
	}

	return analysis
}

// detectCategory returns the first category whose trigger set intersects the
// lower-cased query, in declared priority order.
func detectCategory(lowerQuery string) string {
	for _, rule := range categoryRules {
		if matchesAny(lowerQuery, rule.triggers) {
			return rule.category
		}
	}
	return ""
}

// detectBulkContent flags queries that are pasted content rather than
// questions: over 150 words outright, or 80+ words combined with a
// summarization keyword.
func detectBulkContent(lowerQuery string) bool {
	words := len(strings.Fields(lowerQuery))
	if words > bulkWordLimit {
		return true
	}
	if words >= bulkSummaryWordLimit && matchesAny(lowerQuery, summarizationKeywords) {
		return true
	}
	return false
}

// contextEntities scans the trailing conversation window for entity triggers
// the query itself does not carry. Applied only to short or anaphoric
// queries, which are the ones that need disambiguation.
func contextEntities(lowerQuery string, history []ConversationTurn) []string {
	short := len(strings.Fields(lowerQuery)) <= shortQueryTokenLimit
	anaphoric := matchesAny(lowerQuery, anaphoricPrefixes)
	if !short && !anaphoric {
		return nil
	}

	recent := history
	if len(recent) > historyScanTurns {
		recent = recent[len(recent)-historyScanTurns:]
	}

	var entities []string
	seen := make(map[string]struct{})
	for _, turn := range recent {
		turnLower := strings.ToLower(turn.Content)
		for _, trigger := range entityTriggers {
			if _, dup := seen[trigger]; dup {
				continue
			}
			if strings.Contains(lowerQuery, trigger) {
				continue
			}
			if strings.Contains(turnLower, trigger) {
				seen[trigger] = struct{}{}
				entities = append(entities, trigger)
			}
		}
	}
	return entities
}

func matchesAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
