package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks klyra-ai/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// InsertBatch inserts all chunks for one document in a single transaction.
	// Chunk IDs must be set (UUID) before calling this method. A partial chunk
	// set is never committed: any failure rolls the whole batch back.
	InsertBatch(ctx context.Context, chunks []ChunkRecord) error
	// DeleteByDocument deletes all chunks for a given document ID.
	DeleteByDocument(ctx context.Context, documentID string) error
	// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// ListAll returns every chunk in the corpus, ordered by document and index.
	// This is the candidate set for keyword search.
	ListAll(ctx context.Context) ([]ChunkRecord, error)
	// Count returns the total number of chunks in the corpus.
	Count(ctx context.Context) (int, error)
}

// ChunkRepo provides methods for chunk operations.
// It implements the ChunkStore interface.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// InsertBatch inserts all chunks for one document atomically.
func (r *ChunkRepo) InsertBatch(ctx context.Context, chunks []ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, chunk := range chunks {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO chunks (id, document_id, document_name, category, chunk_index, header_path, text) VALUES (?, ?, ?, ?, ?, ?, ?)",
			chunk.ID, chunk.DocumentID, chunk.DocumentName, chunk.Category, chunk.ChunkIndex, chunk.HeaderPath, chunk.Text,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunk batch: %w", err)
	}
	return nil
}

// DeleteByDocument deletes all chunks for a given document ID.
// Used when re-ingesting a document to remove old chunks before inserting new ones.
func (r *ChunkRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
// Used to get Qdrant point IDs for deletion before re-ingesting.
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// ListAll returns every chunk in the corpus, ordered by document and index.
func (r *ChunkRepo) ListAll(ctx context.Context) ([]ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, document_id, document_name, category, chunk_index, header_path, text FROM chunks ORDER BY document_id, chunk_index",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []ChunkRecord
	for rows.Next() {
		var chunk ChunkRecord
		var headerPath sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.DocumentName, &chunk.Category, &chunk.ChunkIndex, &headerPath, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunk.HeaderPath = headerPath.String
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// Count returns the total number of chunks in the corpus.
func (r *ChunkRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
