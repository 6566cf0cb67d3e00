package rag

import (
	"regexp"
	"sort"
	"strings"
)

// citationTrailerPatterns strip any citation-like trailer the generator
// emitted. The generator's own citations are never trusted; validation
// recomputes them from token overlap. Each pattern is independently testable
// and they are applied in order.
var citationTrailerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?mi)^[ \t]*sources?[ \t]*:.*$`),
	regexp.MustCompile(`(?i)\([ \t]*source[ \t]*:[^)]*\)`),
	regexp.MustCompile(`(?i)\[[ \t]*source[ \t]*:[^\]]*\]`),
	regexp.MustCompile(`(?mi)^[ \t]*from[ \t]*:.*$`),
	regexp.MustCompile(`(?mi)^[ \t]*references?[ \t]*:.*$`),
}

// Validator determines which candidate documents textually support a
// generated answer. It never returns an error: any matching failure is
// treated as "no citation found."
type Validator struct{}

// NewValidator creates a citation validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate strips generator-emitted citations, computes per-document
// meaningful-token overlap against the candidate chunks, and appends a
// normalized Sources footer for the accepted documents. Calling it twice on
// its own output yields the same result.
func (v *Validator) Validate(response string, candidates []RetrievalResult) (string, []string) {
	cleaned := stripCitationTrailers(response)

	responseTokens := meaningfulTokens(cleaned)
	if len(responseTokens) == 0 {
		return cleaned, nil
	}

	// Per document: distinct meaningful tokens shared between the response
	// and any of the document's contributing chunks.
	overlapByDoc := make(map[string]map[string]struct{})
	for _, candidate := range candidates {
		if candidate.DocumentName == "" {
			continue
		}
		for token := range meaningfulTokens(chunkBody(candidate)) {
			if _, inResponse := responseTokens[token]; !inResponse {
				continue
			}
			if overlapByDoc[candidate.DocumentName] == nil {
				overlapByDoc[candidate.DocumentName] = make(map[string]struct{})
			}
			overlapByDoc[candidate.DocumentName][token] = struct{}{}
		}
	}

	type docOverlap struct {
		name    string
		overlap int
	}
	docs := make([]docOverlap, 0, len(overlapByDoc))
	best := 0
	for name, tokens := range overlapByDoc {
		if len(tokens) < citationMinOverlap {
			continue
		}
		docs = append(docs, docOverlap{name: name, overlap: len(tokens)})
		if len(tokens) > best {
			best = len(tokens)
		}
	}
	if len(docs) == 0 {
		return cleaned, nil
	}

	// Precision-biased acceptance: only documents close to the best overlap.
	var accepted []docOverlap
	for _, doc := range docs {
		if float64(doc.overlap) >= citationAcceptBand*float64(best) {
			accepted = append(accepted, doc)
		}
	}
	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].overlap != accepted[j].overlap {
			return accepted[i].overlap > accepted[j].overlap
		}
		return accepted[i].name < accepted[j].name
	})

	names := make([]string, len(accepted))
	for i, doc := range accepted {
		names[i] = doc.name
	}

	final := cleaned + "\n\nSources: " + strings.Join(names, ", ")
	return final, names
}

// stripCitationTrailers removes generator-emitted citation markers and
// collapses the whitespace the removals leave behind.
func stripCitationTrailers(response string) string {
	cleaned := response
	for _, pattern := range citationTrailerPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	// Collapse runs of blank lines left by removed trailers.
	for strings.Contains(cleaned, "\n\n\n") {
		cleaned = strings.ReplaceAll(cleaned, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(cleaned)
}
