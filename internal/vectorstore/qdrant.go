package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"klyra-ai/internal/contextutil"
)

// payloadTextKey is the payload field holding the chunk text.
const payloadTextKey = "text"

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// Upsert inserts or updates points in the collection.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		payload := make(map[string]any, len(point.Meta)+1)
		for k, v := range point.Meta {
			payload[k] = v
		}
		payload[payloadTextKey] = point.Text

		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
			Payload: qdrant.NewValueMap(payload),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Query performs a similarity search returning the k nearest chunks.
// Qdrant reports cosine similarity for cosine collections; the result is
// converted back to a cosine distance so callers see one consistent unit.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		pointID := ""
		if point.Id != nil {
			pointID = point.Id.GetUuid()
		}

		meta := make(map[string]any)
		if point.Payload != nil {
			meta = convertPayloadToMap(point.Payload)
		}

		text, _ := meta[payloadTextKey].(string)
		delete(meta, payloadTextKey)

		results = append(results, SearchResult{
			PointID:  pointID,
			Text:     text,
			Distance: 1 - point.Score,
			Meta:     meta,
		})
	}

	logger.DebugContext(ctx, "query completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Delete removes points by their IDs.
func (s *QdrantStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	qdrantIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		qdrantIDs = append(qdrantIDs, qdrant.NewID(id))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         qdrant.NewPointsSelector(qdrantIDs...),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// DeleteByDocument removes all points belonging to a document.
func (s *QdrantStore) DeleteByDocument(ctx context.Context, collection string, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if documentID == "" {
		return fmt.Errorf("document ID is required")
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete document points", "collection", collection, "document_id", documentID, "error", err)
		return fmt.Errorf("failed to delete document points: %w", err)
	}

	logger.InfoContext(ctx, "deleted document points", "collection", collection, "document_id", documentID)
	return nil
}

// Count returns the number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context, collection string) (int, error) {
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection info: %w", err)
	}

	if info.PointsCount == nil {
		return 0, nil
	}
	return int(*info.PointsCount), nil
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection ensures a collection exists with the specified vector size.
// If the collection exists, validates that the vector size matches.
// If it doesn't exist, creates it with cosine distance.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", collection, "vector_size", vectorSize)
		return nil
	}

	// Collection exists, validate vector size
	info, err := s.client.GetCollectionInfo(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}

	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}

	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}

	actualSize := params.Size
	if actualSize == 0 {
		return fmt.Errorf("could not determine collection vector size")
	}

	if int(actualSize) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
