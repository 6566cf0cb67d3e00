package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// DocumentRecord represents an ingested document in the database.
type DocumentRecord struct {
	ID         string // UUID
	Name       string // Original file name (e.g., "handbook.pdf")
	Category   string // Document category (e.g., "hr-policy", "sales")
	ChunkCount int
	CreatedAt  time.Time
}

// ChunkRecord represents a chunk of document text, indexed for retrieval.
// The ID doubles as the Qdrant point ID so both stores stay aligned.
type ChunkRecord struct {
	ID           string // UUID (same as Qdrant point ID)
	DocumentID   string // UUID (foreign key to documents.id)
	DocumentName string // Denormalized for keyword scoring without a join
	Category     string
	ChunkIndex   int    // Index within document (starts at 0)
	HeaderPath   string // Ancestor section headers joined by " > ", empty for unstructured text
	Text         string // Chunk text content
}
