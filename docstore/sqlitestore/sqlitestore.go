// Package sqlitestore implements docstore.Store on an embedded SQLite
// database. Documents live in a single table as JSON bodies with the
// version tag denormalized into its own column so conditional replacement
// is one UPDATE statement.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/lindstrom-j/docmap/docstore"
	"github.com/lindstrom-j/docmap/internal/hexid"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    id      TEXT PRIMARY KEY,
    updated TEXT NOT NULL DEFAULT '',
    body    TEXT NOT NULL
);
`

// Store is a SQLite-backed docstore.Store.
type Store struct {
	db *sql.DB
}

var _ docstore.Store = (*Store)(nil)

// Open opens (and if necessary creates) the database at path and prepares
// the schema. Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent statements.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new document under a fresh primary key.
func (s *Store) Insert(ctx context.Context, payload docstore.Payload) (string, error) {
	id := hexid.New()
	payload[docstore.FieldID] = id

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	tag, _ := payload[docstore.FieldUpdated].(string)

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (id, updated, body) VALUES (?, ?, ?)",
		id, tag, string(body),
	)
	if err != nil {
		return "", fmt.Errorf("insert document %s: %w", id, err)
	}
	return id, nil
}

// ConditionalReplace replaces the body only when the stored version tag
// matches. The tag comparison and the write are a single UPDATE, so there
// is no check-then-write window.
func (s *Store) ConditionalReplace(ctx context.Context, id, expectedTag string, payload docstore.Payload) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal document: %w", err)
	}
	tag, _ := payload[docstore.FieldUpdated].(string)

	result, err := s.db.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated = ? WHERE id = ? AND updated = ?",
		string(body), tag, id, expectedTag,
	)
	if err != nil {
		return false, fmt.Errorf("replace document %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Replace upserts the body regardless of its version tag.
func (s *Store) Replace(ctx context.Context, id string, payload docstore.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	tag, _ := payload[docstore.FieldUpdated].(string)

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (id, updated, body) VALUES (?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated = excluded.updated",
		id, tag, string(body),
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", id, err)
	}
	return nil
}

// Delete removes the document at id.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Find returns every document matching filter. Filtering happens after
// hydration: filters are flat equality maps and query planning is out of
// scope for this layer.
func (s *Store) Find(ctx context.Context, filter docstore.Filter, projection docstore.Projection) ([]docstore.Payload, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM documents")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var results []docstore.Payload
	for rows.Next() {
		doc, err := hydrate(rows)
		if err != nil {
			return nil, err
		}
		if docstore.Match(doc, filter) {
			results = append(results, docstore.Project(doc, projection))
		}
	}
	return results, rows.Err()
}

// FindOne returns the first document matching filter, or ErrNotFound.
func (s *Store) FindOne(ctx context.Context, filter docstore.Filter, projection docstore.Projection) (docstore.Payload, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT body FROM documents")
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		doc, err := hydrate(rows)
		if err != nil {
			return nil, err
		}
		if docstore.Match(doc, filter) {
			return docstore.Project(doc, projection), nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, docstore.ErrNotFound
}

func hydrate(rows *sql.Rows) (docstore.Payload, error) {
	var body string
	if err := rows.Scan(&body); err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	var doc docstore.Payload
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}
