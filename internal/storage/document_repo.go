package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// DocumentStore defines the interface for document metadata operations.
type DocumentStore interface {
	// Insert inserts a document record. The record ID must be set (UUID).
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// Delete removes a document record. Chunks cascade via foreign key.
	Delete(ctx context.Context, id string) error
	// ListAll returns all document records ordered by creation time.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a document record.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO documents (id, name, category, chunk_count) VALUES (?, ?, ?, ?)",
		doc.ID, doc.Name, doc.Category, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, category, chunk_count, created_at FROM documents WHERE id = ?",
		id,
	).Scan(&doc.ID, &doc.Name, &doc.Category, &doc.ChunkCount, &doc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Delete removes a document record and, via cascade, its chunks.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns all document records ordered by creation time.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, category, chunk_count, created_at FROM documents ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Category, &doc.ChunkCount, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}
