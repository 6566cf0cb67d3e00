package indexer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"klyra-ai/internal/contextutil"
	"klyra-ai/internal/storage"
	"klyra-ai/internal/vectorstore"
)

// Embedder generates embedding vectors for texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// IngestRequest describes a document to ingest.
type IngestRequest struct {
	Name     string // Original file name (e.g., "handbook.pdf")
	Category string // Document category, defaults to "general"
	Format   string // "md"/"markdown" or plain text
	Content  string // Extracted document text
}

// Pipeline orchestrates document ingestion: text extraction, segmentation,
// embedding, and atomic storage into SQLite and the vector store.
type Pipeline struct {
	docRepo     storage.DocumentStore
	chunkRepo   storage.ChunkStore
	embedder    Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	segmenter   *Segmenter
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docRepo storage.DocumentStore,
	chunkRepo storage.ChunkStore,
	embedder Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkSize, chunkOverlap int,
) *Pipeline {
	return &Pipeline{
		docRepo:     docRepo,
		chunkRepo:   chunkRepo,
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		segmenter:   NewSegmenter(chunkSize, chunkOverlap),
	}
}

// ProcessDocument ingests one document: extract, segment, embed, store.
// Extraction and segmentation failures are reported before anything is
// written, so a half-written chunk set never exists. All chunks of the
// document are committed in one SQLite transaction and one vector upsert.
func (p *Pipeline) ProcessDocument(ctx context.Context, req IngestRequest) (*storage.DocumentRecord, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("document name is required")
	}
	category := req.Category
	if category == "" {
		category = "general"
	}

	text := strings.TrimSpace(req.Content)
	structured := false
	if isMarkdown(req.Format, req.Name) {
		extracted, hasHeaders := ExtractMarkdown([]byte(req.Content))
		text = extracted
		structured = hasHeaders
	}
	if text == "" {
		return nil, fmt.Errorf("no text could be extracted from the document")
	}

	chunks := p.segmenter.Segment(text, structured)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks could be created from the document")
	}

	chunkTexts := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunkTexts[i] = chunk.Text
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, chunkTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	documentID := uuid.New().String()

	chunkRecords := make([]storage.ChunkRecord, len(chunks))
	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		chunkID := uuid.New().String()

		chunkRecords[i] = storage.ChunkRecord{
			ID:           chunkID,
			DocumentID:   documentID,
			DocumentName: req.Name,
			Category:     category,
			ChunkIndex:   chunk.Index,
			HeaderPath:   chunk.HeaderPath,
			Text:         chunk.Text,
		}

		points[i] = vectorstore.Point{
			ID:   chunkID,
			Vec:  embeddings[i],
			Text: chunk.Text,
			Meta: map[string]any{
				"document_id":   documentID,
				"document_name": req.Name,
				"category":      category,
				"chunk_index":   chunk.Index,
				"header_path":   chunk.HeaderPath,
			},
		}
	}

	doc := &storage.DocumentRecord{
		ID:         documentID,
		Name:       req.Name,
		Category:   category,
		ChunkCount: len(chunks),
	}
	if err := p.docRepo.Insert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	if err := p.chunkRepo.InsertBatch(ctx, chunkRecords); err != nil {
		// Undo the document record so the store never holds a document
		// without its chunk set.
		_ = p.docRepo.Delete(ctx, documentID)
		return nil, fmt.Errorf("failed to insert chunks: %w", err)
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		// Best-effort purge of any points that landed before the failure, so
		// the two stores stay symmetric.
		_ = p.vectorStore.DeleteByDocument(ctx, p.collection, documentID)
		_ = p.chunkRepo.DeleteByDocument(ctx, documentID)
		_ = p.docRepo.Delete(ctx, documentID)
		return nil, fmt.Errorf("failed to upsert vectors: %w", err)
	}

	logger.InfoContext(ctx, "document ingested", "document_id", documentID, "name", req.Name, "category", category, "chunks", len(chunks))
	return doc, nil
}

// DeleteDocument removes a document and its chunks from both stores. Chunk
// rows are deleted explicitly rather than left to the schema's cascade, and
// vector points are removed by chunk ID so a point with a damaged payload
// cannot be left behind.
func (p *Pipeline) DeleteDocument(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := p.docRepo.GetByID(ctx, documentID); err != nil {
		return err
	}

	chunkIDs, err := p.chunkRepo.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list document chunks: %w", err)
	}

	if err := p.vectorStore.Delete(ctx, p.collection, chunkIDs); err != nil {
		return fmt.Errorf("failed to delete document vectors: %w", err)
	}

	if err := p.chunkRepo.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}

	if err := p.docRepo.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID, "chunks", len(chunkIDs))
	return nil
}

// ReplaceDocument supersedes an existing document with new content: the old
// chunk set is removed from both stores before the new version is ingested.
func (p *Pipeline) ReplaceDocument(ctx context.Context, documentID string, req IngestRequest) (*storage.DocumentRecord, error) {
	if err := p.DeleteDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return p.ProcessDocument(ctx, req)
}

// isMarkdown reports whether the document should be parsed as markdown.
func isMarkdown(format, name string) bool {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return true
	}
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown")
}
