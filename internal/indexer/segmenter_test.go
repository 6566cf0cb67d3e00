package indexer

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSegment_EmptyInput(t *testing.T) {
	s := NewSegmenter(1000, 100)

	for _, structured := range []bool{true, false} {
		chunks := s.Segment("", structured)
		if chunks == nil {
			t.Errorf("Segment(%q, %v) = nil, want empty slice", "", structured)
		}
		if len(chunks) != 0 {
			t.Errorf("Segment(%q, %v) returned %d chunks, want 0", "", structured, len(chunks))
		}

		chunks = s.Segment("   \n\t\n  ", structured)
		if len(chunks) != 0 {
			t.Errorf("whitespace-only input returned %d chunks, want 0", len(chunks))
		}
	}
}

func TestSegment_StructuredHeaderChain(t *testing.T) {
	s := NewSegmenter(1000, 100)

	text := "# Handbook\n\nIntro text.\n\n## Benefits\n\nVacation is 25 days.\n\n### Details\n\nCarry over up to 5 days.\n\n## Conduct\n\nBe kind."
	chunks := s.Segment(text, true)

	want := []struct {
		headerPath string
		contains   string
	}{
		{"Handbook", "Intro text."},
		{"Handbook > Benefits", "Vacation is 25 days."},
		{"Handbook > Benefits > Details", "Carry over up to 5 days."},
		{"Handbook > Conduct", "Be kind."},
	}

	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %+v", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		got := chunks[i]
		if got.Index != i {
			t.Errorf("chunk %d has Index %d", i, got.Index)
		}
		if got.HeaderPath != w.headerPath {
			t.Errorf("chunk %d HeaderPath = %q, want %q", i, got.HeaderPath, w.headerPath)
		}
		if !strings.Contains(got.Text, w.contains) {
			t.Errorf("chunk %d text %q does not contain %q", i, got.Text, w.contains)
		}
		wantPrefix := w.headerPath + "\n"
		if !strings.HasPrefix(got.Text, wantPrefix) {
			t.Errorf("chunk %d text %q does not start with header chain %q", i, got.Text, wantPrefix)
		}
	}
}

func TestSegment_StructuredSiblingHeaderReplacesChain(t *testing.T) {
	s := NewSegmenter(1000, 0)

	text := "## First\n\nalpha\n\n## Second\n\nbeta"
	chunks := s.Segment(text, true)

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[1].HeaderPath != "Second" {
		t.Errorf("sibling header chain = %q, want %q", chunks[1].HeaderPath, "Second")
	}
	if strings.Contains(chunks[1].Text, "First") {
		t.Errorf("second chunk %q still carries replaced header", chunks[1].Text)
	}
}

func TestSegment_StructuredPreambleHasNoChain(t *testing.T) {
	s := NewSegmenter(1000, 0)

	chunks := s.Segment("Preamble before any header.\n\n# Title\n\nBody.", true)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].HeaderPath != "" {
		t.Errorf("preamble HeaderPath = %q, want empty", chunks[0].HeaderPath)
	}
	if chunks[0].Text != "Preamble before any header." {
		t.Errorf("preamble text = %q", chunks[0].Text)
	}
}

func TestSegment_StructuredOversizedSectionKeepsChain(t *testing.T) {
	s := NewSegmenter(80, 0)

	var body strings.Builder
	for i := 0; i < 12; i++ {
		body.WriteString("This line pads the section well past the chunk size limit.\n")
	}
	chunks := s.Segment("# Long Section\n\n"+body.String(), true)

	if len(chunks) < 2 {
		t.Fatalf("oversized section produced %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.HeaderPath != "Long Section" {
			t.Errorf("chunk %d HeaderPath = %q, want %q", i, chunk.HeaderPath, "Long Section")
		}
		if !strings.HasPrefix(chunk.Text, "Long Section\n") {
			t.Errorf("chunk %d lost its header chain prefix: %q", i, chunk.Text)
		}
	}
}

func TestParseHeaderLine(t *testing.T) {
	tests := []struct {
		line      string
		wantDepth int
		wantTitle string
		wantOK    bool
	}{
		{"# Title", 1, "Title", true},
		{"### Deep", 3, "Deep", true},
		{"###### Max", 6, "Max", true},
		{"####### Too deep", 0, "", false},
		{"#NoSpace", 0, "", false},
		{"# ", 0, "", false},
		{"plain text", 0, "", false},
		{"  ## Indented  ", 2, "Indented", true},
	}

	for _, tt := range tests {
		depth, title, ok := parseHeaderLine(tt.line)
		if depth != tt.wantDepth || title != tt.wantTitle || ok != tt.wantOK {
			t.Errorf("parseHeaderLine(%q) = (%d, %q, %v), want (%d, %q, %v)",
				tt.line, depth, title, ok, tt.wantDepth, tt.wantTitle, tt.wantOK)
		}
	}
}

func TestSegment_UnstructuredShortText(t *testing.T) {
	s := NewSegmenter(1000, 100)

	chunks := s.Segment("A short paragraph that fits in one chunk.", false)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "A short paragraph that fits in one chunk." {
		t.Errorf("unexpected chunk text %q", chunks[0].Text)
	}
	if chunks[0].HeaderPath != "" {
		t.Errorf("unstructured chunk has HeaderPath %q", chunks[0].HeaderPath)
	}
}

func TestSegment_UnstructuredSplitsAndOverlaps(t *testing.T) {
	s := NewSegmenter(200, 40)

	var text strings.Builder
	for i := 0; i < 10; i++ {
		text.WriteString("Paragraph body with enough words to matter for the splitter.\n\n")
	}
	chunks := s.Segment(text.String(), false)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if n := utf8.RuneCountInString(chunk.Text); n > 200 {
			t.Errorf("chunk %d has %d runes, exceeds chunk size", i, n)
		}
		if chunk.Index != i {
			t.Errorf("chunk %d has Index %d", i, chunk.Index)
		}
	}

	// Consecutive chunks share overlap text.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := strings.TrimSpace(string(prev[max(0, len(prev)-40):]))
		if tail == "" {
			continue
		}
		if !strings.Contains(chunks[i].Text, tail) {
			t.Errorf("chunk %d does not carry overlap tail of chunk %d", i, i-1)
		}
	}
}

func TestSegment_UnstructuredNoSeparators(t *testing.T) {
	s := NewSegmenter(50, 10)

	text := strings.Repeat("x", 130)
	chunks := s.Segment(text, false)

	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want at least 3", len(chunks))
	}
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		runes := []rune(chunks[i].Text)
		rebuilt.WriteString(string(runes[min(10, len(runes)):]))
	}
	if rebuilt.String() != text {
		t.Errorf("rune-window chunks do not reassemble the input")
	}
}

func TestNewSegmenter_Defaults(t *testing.T) {
	s := NewSegmenter(0, -5)
	if s.chunkSize != 1000 {
		t.Errorf("chunkSize = %d, want 1000", s.chunkSize)
	}
	if s.overlap != 0 {
		t.Errorf("overlap = %d, want 0", s.overlap)
	}

	s = NewSegmenter(100, 100)
	if s.overlap != 0 {
		t.Errorf("overlap >= chunkSize should reset to 0, got %d", s.overlap)
	}
}
