package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"meal-planner/internal/document"
)

// Store persists the household document as a single JSON blob row, keyed by
// a fixed key. It has no locking of its own; concurrency safety is layered
// on top by the gate.
type Store struct {
	db  *sql.DB
	key string
}

// New creates a Store bound to a document key.
func New(db *sql.DB, key string) *Store {
	return &Store{db: db, key: key}
}

// Read returns the stored document. When no row exists, or the read or
// decode fails, it returns the default document at version 0. A failed read
// and a genuinely missing document are deliberately not distinguished for
// callers; the error is logged so an operator can tell them apart.
func (s *Store) Read(ctx context.Context) document.Document {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE key = ?", s.key,
	).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Warning: failed to read document '%s', serving default: %v", s.key, err)
		}
		return document.Default()
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		log.Printf("Warning: failed to decode document '%s', serving default: %v", s.key, err)
		return document.Default()
	}

	// Default settings apply only when the stored JSON has no settings key at
	// all; an explicit zero value is a real setting and must survive.
	var keys struct {
		Settings *document.Settings `json:"settings"`
	}
	if json.Unmarshal([]byte(data), &keys) == nil && keys.Settings == nil {
		doc.Settings = document.DefaultSettings()
	}
	return doc.Normalize()
}

// Write unconditionally overwrites the stored document.
func (s *Store) Write(ctx context.Context, doc document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, data, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, s.key, string(data), doc.Version, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
