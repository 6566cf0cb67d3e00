package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks klyra-ai/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with its chunk text and metadata.
type Point struct {
	ID   string
	Vec  []float32
	Text string
	Meta map[string]any
}

// SearchResult represents a similarity search hit.
// Distance is the cosine distance to the query vector; callers convert it
// to a similarity score as 1 - distance.
type SearchResult struct {
	PointID  string
	Text     string
	Distance float32
	Meta     map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection. All points for one
	// document are committed in a single call so a document's chunk set never
	// lands partially.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Query performs a similarity search returning the k nearest chunks.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByDocument removes all points belonging to a document.
	DeleteByDocument(ctx context.Context, collection string, documentID string) error

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (int, error)
}
