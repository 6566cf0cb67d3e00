package rag

import (
	"strings"
	"testing"
)

func TestAnalyzeQuery_Category(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"hr policy", "How many vacation days do I get?", "hr-policy"},
		{"leadership", "Who is the CEO?", "leadership"},
		{"sales", "What is our pricing model?", "sales"},
		{"technical", "Where is the API documented?", "technical"},
		{"product", "When is the next release?", "product"},
		{"contact", "What is the office address?", "contact"},
		{"no category", "Hello there", ""},
		{"case insensitive", "WHO IS THE CEO?", "leadership"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeQuery(tt.query, nil)
			if got.Category != tt.want {
				t.Errorf("Category = %q, want %q", got.Category, tt.want)
			}
		})
	}
}

func TestAnalyzeQuery_CategoryPriority(t *testing.T) {
	// "policy" (hr-policy) and "pricing" (sales) both trigger; hr-policy is
	// declared first and must win.
	got := AnalyzeQuery("What is the policy on pricing approvals?", nil)
	if got.Category != "hr-policy" {
		t.Errorf("Category = %q, want %q", got.Category, "hr-policy")
	}
}

func TestAnalyzeQuery_ExpansionOnlyAffectsEmbeddingQuery(t *testing.T) {
	query := "Who is the head of engineering?"
	got := AnalyzeQuery(query, nil)

	if got.Original != query {
		t.Errorf("Original was modified: %q", got.Original)
	}
	if got.KeywordQuery != query {
		t.Errorf("KeywordQuery was expanded: %q", got.KeywordQuery)
	}
	if !strings.Contains(got.EmbeddingQuery, "leadership team executives staff") {
		t.Errorf("EmbeddingQuery %q missing expansion", got.EmbeddingQuery)
	}
	if !strings.HasPrefix(got.EmbeddingQuery, query) {
		t.Errorf("EmbeddingQuery %q does not start with original query", got.EmbeddingQuery)
	}
}

func TestAnalyzeQuery_MultipleExpansionsAccumulate(t *testing.T) {
	got := AnalyzeQuery("How does the api pricing work?", nil)

	if !strings.Contains(got.EmbeddingQuery, "technical documentation setup configuration") {
		t.Errorf("EmbeddingQuery %q missing technical expansion", got.EmbeddingQuery)
	}
	if !strings.Contains(got.EmbeddingQuery, "pricing plans costs sales") {
		t.Errorf("EmbeddingQuery %q missing pricing expansion", got.EmbeddingQuery)
	}
}

func TestAnalyzeQuery_ContextEnhancement(t *testing.T) {
	history := []ConversationTurn{
		{Role: "user", Content: "Tell me about the employee handbook"},
		{Role: "assistant", Content: "The handbook covers conduct and benefits."},
	}

	// Short anaphoric follow-up pulls entity terms from recent turns into
	// both retrieval branches.
	got := AnalyzeQuery("what about sick days", history)
	if !strings.Contains(got.KeywordQuery, "handbook") {
		t.Errorf("KeywordQuery %q missing context entity", got.KeywordQuery)
	}
	if !strings.Contains(got.EmbeddingQuery, "handbook") {
		t.Errorf("EmbeddingQuery %q missing context entity", got.EmbeddingQuery)
	}
	if got.Original != "what about sick days" {
		t.Errorf("Original was modified: %q", got.Original)
	}
}

func TestAnalyzeQuery_ContextEnhancementSkipsLongQueries(t *testing.T) {
	history := []ConversationTurn{
		{Role: "user", Content: "Our CEO mentioned the roadmap."},
	}

	query := "Please give a complete rundown of every single internal process we follow here"
	got := AnalyzeQuery(query, history)
	if strings.Contains(got.KeywordQuery, "roadmap") || strings.Contains(got.KeywordQuery, "ceo") {
		t.Errorf("long non-anaphoric query was enhanced: %q", got.KeywordQuery)
	}
}

func TestAnalyzeQuery_ContextEnhancementSkipsPresentEntities(t *testing.T) {
	history := []ConversationTurn{
		{Role: "user", Content: "Ask about the handbook."},
	}

	got := AnalyzeQuery("handbook rules?", history)
	if strings.Count(strings.ToLower(got.KeywordQuery), "handbook") != 1 {
		t.Errorf("entity already in query was appended again: %q", got.KeywordQuery)
	}
}

func TestAnalyzeQuery_ContextEnhancementScansTrailingWindow(t *testing.T) {
	history := make([]ConversationTurn, 0, 8)
	history = append(history, ConversationTurn{Role: "user", Content: "The CFO asked about budgets."})
	for i := 0; i < 7; i++ {
		history = append(history, ConversationTurn{Role: "user", Content: "unrelated chatter"})
	}

	got := AnalyzeQuery("what about that", history)
	if strings.Contains(got.KeywordQuery, "cfo") {
		t.Errorf("entity outside the scan window was pulled in: %q", got.KeywordQuery)
	}
}

func TestAnalyzeQuery_BulkContent(t *testing.T) {
	longText := strings.Repeat("word ", 151)
	got := AnalyzeQuery(longText, nil)
	if !got.IsBulkContent {
		t.Error("IsBulkContent = false for >150-word input")
	}
	if got.Category != "" {
		t.Errorf("bulk content was categorized as %q", got.Category)
	}
	if got.EmbeddingQuery != longText {
		t.Error("bulk content was expanded")
	}
}

func TestAnalyzeQuery_BulkContentWithSummaryKeyword(t *testing.T) {
	pasted := "Please summarize this: " + strings.Repeat("word ", 90)
	got := AnalyzeQuery(pasted, nil)
	if !got.IsBulkContent {
		t.Error("IsBulkContent = false for 80+ words with summarization keyword")
	}

	short := "Please summarize our vacation policy"
	got = AnalyzeQuery(short, nil)
	if got.IsBulkContent {
		t.Error("IsBulkContent = true for a short summarization question")
	}
}

func TestDetectBulkContent_Thresholds(t *testing.T) {
	exactly150 := strings.TrimSpace(strings.Repeat("word ", 150))
	if detectBulkContent(exactly150) {
		t.Error("exactly 150 words flagged as bulk")
	}

	exactly80WithKeyword := "summarize " + strings.TrimSpace(strings.Repeat("word ", 79))
	if !detectBulkContent(exactly80WithKeyword) {
		t.Error("80 words with summarization keyword not flagged as bulk")
	}

	under80WithKeyword := "summarize " + strings.TrimSpace(strings.Repeat("word ", 50))
	if detectBulkContent(under80WithKeyword) {
		t.Error("short text with summarization keyword flagged as bulk")
	}
}
