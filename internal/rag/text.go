package rag

import (
	"strings"
	"unicode"
)

// englishStopwords are dropped from keyword queries and citation overlap.
var englishStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"can": {}, "did": {}, "do": {}, "does": {}, "for": {}, "from": {}, "had": {}, "has": {},
	"have": {}, "how": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "that": {}, "the": {}, "their": {}, "them": {}, "there": {}, "they": {}, "this": {},
	"to": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// domainStopwords are terms so common across a company corpus that overlap on
// them would falsely match every document. Used only by citation validation.
var domainStopwords = map[string]struct{}{
	"company": {}, "document": {}, "documents": {}, "information": {}, "also": {},
	"please": {}, "based": {}, "according": {}, "following": {}, "include": {},
	"includes": {}, "including": {}, "details": {}, "section": {}, "page": {},
}

// tokenize lowercases text and splits it into alphanumeric tokens.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// keywordTokens tokenizes a query for the keyword branch: stop-words and
// tokens of two characters or fewer are dropped.
func keywordTokens(query string) []string {
	tokens := tokenize(query)
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(token) <= 2 {
			continue
		}
		if _, isStop := englishStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// meaningfulTokens tokenizes text for citation overlap: tokens of three or
// more characters, minus both generic and domain stop-lists.
func meaningfulTokens(text string) map[string]struct{} {
	tokens := tokenize(text)
	result := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len(token) < 3 {
			continue
		}
		if _, isStop := englishStopwords[token]; isStop {
			continue
		}
		if _, isStop := domainStopwords[token]; isStop {
			continue
		}
		result[token] = struct{}{}
	}
	return result
}

// chunkBody returns the chunk text without its header-path prefix line, if
// the chunk carries one. Header tokens belong to the section structure, not
// the content, and must not count toward citation overlap.
func chunkBody(result RetrievalResult) string {
	if result.HeaderPath == "" {
		return result.ChunkText
	}
	first, rest, found := strings.Cut(result.ChunkText, "\n")
	if found && strings.TrimSpace(first) == result.HeaderPath {
		return rest
	}
	return result.ChunkText
}

// dedupKey is the merge dedup key: the first 100 characters of chunk text.
func dedupKey(text string) string {
	runes := []rune(text)
	if len(runes) <= dedupPrefixLen {
		return text
	}
	return string(runes[:dedupPrefixLen])
}
