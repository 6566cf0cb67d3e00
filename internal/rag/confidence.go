package rag

import "sort"

// confidenceReport summarizes retrieval quality for one query.
type confidenceReport struct {
	Score         float64
	Level         ConfidenceLevel
	TopScore      float64
	MeanScore     float64
	IsAmbiguous   bool
	AmbiguousDocs []string
}

// evaluateConfidence scores the unfiltered retrieval set. The per-band score
// is linear and anchored at the band's lower bound, so confidence is
// monotone in the top score both within and across bands.
func evaluateConfidence(results []RetrievalResult) confidenceReport {
	if len(results) == 0 {
		return confidenceReport{Level: ConfidenceNone}
	}

	var top, sum float64
	for _, result := range results {
		if result.Score > top {
			top = result.Score
		}
		sum += result.Score
	}
	mean := sum / float64(len(results))

	report := confidenceReport{TopScore: top, MeanScore: mean}

	// Band slopes connect each band's ceiling to the next band's floor:
	// 0.45→0.5, 0.60→0.7, 0.75→0.9, 1.0→1.0.
	switch {
	case top >= confidenceHighThreshold:
		report.Level = ConfidenceHigh
		report.Score = 0.9 + (top-confidenceHighThreshold)*0.4
	case top >= confidenceMediumThreshold:
		report.Level = ConfidenceMedium
		report.Score = 0.7 + (top-confidenceMediumThreshold)*(4.0/3.0)
	case top >= confidenceLowThreshold:
		report.Level = ConfidenceLow
		report.Score = 0.5 + (top-confidenceLowThreshold)*(4.0/3.0)
	default:
		report.Level = ConfidenceNone
		report.Score = top * (0.5 / confidenceLowThreshold)
	}

	// Corroboration: several independently strong results raise confidence
	// beyond what the single best score says.
	strong := 0
	for _, result := range results {
		if result.Score >= confidenceMediumThreshold {
			strong++
		}
	}
	if strong >= corroborationMinResults {
		report.Score += corroborationBoost
	}
	if report.Score > 1.0 {
		report.Score = 1.0
	}
	if report.Score < 0 {
		report.Score = 0
	}

	report.IsAmbiguous, report.AmbiguousDocs = detectAmbiguity(results)
	return report
}

// detectAmbiguity flags near-ties between distinct documents: at least two
// documents whose best scores are within the ambiguity band of the leader,
// with the leader clearing the low threshold.
func detectAmbiguity(results []RetrievalResult) (bool, []string) {
	best := make(map[string]float64)
	for _, result := range results {
		if result.DocumentName == "" {
			continue
		}
		if result.Score > best[result.DocumentName] {
			best[result.DocumentName] = result.Score
		}
	}
	if len(best) < 2 {
		return false, nil
	}

	type docScore struct {
		name  string
		score float64
	}
	docs := make([]docScore, 0, len(best))
	for name, score := range best {
		docs = append(docs, docScore{name, score})
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].score != docs[j].score {
			return docs[i].score > docs[j].score
		}
		return docs[i].name < docs[j].name
	})

	leader := docs[0].score
	if leader < confidenceLowThreshold {
		return false, nil
	}

	var tied []string
	for _, doc := range docs {
		if doc.score >= leader*ambiguityBand {
			tied = append(tied, doc.name)
		}
		if len(tied) == maxAmbiguousDocs {
			break
		}
	}
	if len(tied) < 2 {
		return false, nil
	}
	return true, tied
}
