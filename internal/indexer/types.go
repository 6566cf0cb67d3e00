package indexer

// Chunk represents a bounded slice of a document's text, the unit of retrieval.
type Chunk struct {
	Index      int    // Chunk index within document (starts at 0)
	HeaderPath string // Ancestor section headers joined by " > ", empty for unstructured text
	Text       string // Chunk text; header-bearing chunks carry the header path as their first line
}
