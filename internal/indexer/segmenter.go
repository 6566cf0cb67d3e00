package indexer

import (
	"strings"
	"unicode/utf8"
)

// recursiveSeparators is the priority list for splitting unstructured text:
// paragraph, line, sentence, word, character.
var recursiveSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Segmenter splits raw document text into context-bearing chunks.
// For header-bearing text it scans line by line and prefixes each chunk with
// its section header chain; for unstructured text it splits recursively on a
// priority list of separators with a configurable overlap.
type Segmenter struct {
	chunkSize int // target chunk size in runes
	overlap   int // trailing runes of one chunk repeated at the head of the next
}

// NewSegmenter creates a Segmenter with the given chunk size and overlap.
func NewSegmenter(chunkSize, overlap int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	return &Segmenter{chunkSize: chunkSize, overlap: overlap}
}

// Segment splits text into ordered chunks. structured selects header-aware
// segmentation. Empty or whitespace-only input yields an empty list.
func (s *Segmenter) Segment(text string, structured bool) []Chunk {
	if strings.TrimSpace(text) == "" {
		return []Chunk{}
	}
	if structured {
		return s.segmentStructured(text)
	}

	pieces := s.splitRecursive(text, recursiveSeparators)
	chunks := make([]Chunk, 0, len(pieces))
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Text: piece})
	}
	return chunks
}

type headerInfo struct {
	depth int
	title string
}

// segmentStructured scans line by line. A header line flushes the buffered
// chunk under the current header chain, then replaces any headers at or below
// the new header's depth. Oversized buffers flush without discarding the chain.
func (s *Segmenter) segmentStructured(text string) []Chunk {
	var (
		chunks []Chunk
		stack  []headerInfo
		buf    []string
		bufLen int
	)

	headerChain := func() string {
		if len(stack) == 0 {
			return ""
		}
		titles := make([]string, len(stack))
		for i, h := range stack {
			titles[i] = h.title
		}
		return strings.Join(titles, " > ")
	}

	flush := func() {
		body := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		bufLen = 0
		if body == "" {
			return
		}
		chain := headerChain()
		chunkText := body
		if chain != "" {
			chunkText = chain + "\n" + body
		}
		chunks = append(chunks, Chunk{Index: len(chunks), HeaderPath: chain, Text: chunkText})
	}

	for _, line := range strings.Split(text, "\n") {
		if depth, title, ok := parseHeaderLine(line); ok {
			flush()
			for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headerInfo{depth: depth, title: title})
			continue
		}

		lineLen := utf8.RuneCountInString(line)
		if bufLen > 0 && bufLen+lineLen+1 > s.chunkSize {
			flush()
		}
		buf = append(buf, line)
		bufLen += lineLen + 1
	}
	flush()

	return chunks
}

// parseHeaderLine recognizes markdown-style header markers: one to six '#'
// characters followed by a space.
func parseHeaderLine(line string) (depth int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return 0, "", false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i > 6 || i >= len(trimmed) || trimmed[i] != ' ' {
		return 0, "", false
	}
	title = strings.TrimSpace(trimmed[i:])
	if title == "" {
		return 0, "", false
	}
	return i, title, true
}

// splitRecursive splits text on the first separator in the priority list that
// produces progress, recursing into oversized fragments with the remaining
// separators and merging small fragments back up to the chunk size.
func (s *Segmenter) splitRecursive(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	rest := []string{}
	for i, candidate := range separators {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.splitByRunes(text)
	}

	var fragments []string
	for _, part := range strings.Split(text, sep) {
		if utf8.RuneCountInString(part) > s.chunkSize {
			fragments = append(fragments, s.splitRecursive(part, rest)...)
		} else {
			fragments = append(fragments, part)
		}
	}

	return s.mergeFragments(fragments, sep)
}

// mergeFragments greedily packs fragments into chunks no larger than the
// chunk size, seeding each new chunk with the overlap tail of the previous one.
func (s *Segmenter) mergeFragments(fragments []string, sep string) []string {
	var (
		chunks []string
		buf    strings.Builder
	)

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunk := buf.String()
		buf.Reset()
		if strings.TrimSpace(chunk) == "" {
			return
		}
		chunks = append(chunks, chunk)
		if s.overlap > 0 {
			buf.WriteString(tailRunes(chunk, s.overlap))
		}
	}

	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		fragLen := utf8.RuneCountInString(fragment) + utf8.RuneCountInString(sep)
		if buf.Len() > 0 && utf8.RuneCountInString(buf.String())+fragLen > s.chunkSize {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(fragment)
	}
	if strings.TrimSpace(buf.String()) != "" {
		chunks = append(chunks, buf.String())
	}

	return chunks
}

// splitByRunes is the character-level fallback: fixed windows with overlap.
func (s *Segmenter) splitByRunes(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// tailRunes returns the last n runes of text.
func tailRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
