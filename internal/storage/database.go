package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	// Foreign keys are off by default in SQLite and the setting is
	// per-connection, so it must go on the DSN: a one-shot PRAGMA would only
	// apply to whichever pooled connection happened to execute it.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			chunk_count INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			document_name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			chunk_index INTEGER NOT NULL,
			header_path TEXT,
			text TEXT NOT NULL,
			FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
