package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"geminios/internal/logging"
)

// sqliteStore implements Store on a local SQLite database. It is the
// offline/local driver: documents survive restarts, and change events are
// fanned out in-process (cross-process subscribers are out of scope).
type sqliteStore struct {
	db       *sql.DB
	notifier *notifier

	// Serializes read-merge-write cycles; SQLite handles durability but the
	// merge itself must not interleave.
	mu sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	key    TEXT PRIMARY KEY,
	fields TEXT NOT NULL,
	rev    INTEGER NOT NULL
);`

func newSQLiteStore(path string) (*sqliteStore, error) {
	if path == "" {
		return nil, ErrInvalidConfig
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logging.Store("sqlite store open at %s", path)
	return &sqliteStore{db: db, notifier: newNotifier()}, nil
}

func (s *sqliteStore) load(ctx context.Context, key string) (Document, error) {
	var fieldsJSON string
	var rev int64
	err := s.db.QueryRowContext(ctx,
		"SELECT fields, rev FROM documents WHERE key = ?", key,
	).Scan(&fieldsJSON, &rev)
	if err == sql.ErrNoRows {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to load document: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return Document{}, fmt.Errorf("corrupt document %s: %w", key, err)
	}
	return Document{Key: key, Fields: fields, Rev: rev}, nil
}

// Get implements Store.
func (s *sqliteStore) Get(ctx context.Context, key string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, key)
}

// Set implements Store.
func (s *sqliteStore) Set(ctx context.Context, key string, fields map[string]any) error {
	updates, err := encodeFields(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	existing, err := s.load(ctx, key)
	if err != nil && err != ErrNotFound {
		s.mu.Unlock()
		return err
	}

	doc := Document{
		Key:    key,
		Fields: mergeFields(existing.Fields, updates),
		Rev:    existing.Rev + 1,
	}
	merged, err := json.Marshal(doc.Fields)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, fields, rev) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET fields = excluded.fields, rev = excluded.rev`,
		key, string(merged), doc.Rev)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	s.notifier.publish(Event{Key: key, Doc: doc, Exists: true})
	return nil
}

// Subscribe implements Store.
func (s *sqliteStore) Subscribe(ctx context.Context, key string) (<-chan Event, CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx, key)
	exists := true
	if err == ErrNotFound {
		exists = false
	} else if err != nil {
		return nil, nil, err
	}

	ch, cancel := s.notifier.subscribe(key)
	ch <- Event{Key: key, Doc: doc, Exists: exists}
	return ch, cancel, nil
}

// Close implements Store.
func (s *sqliteStore) Close() error {
	s.notifier.closeAll()
	return s.db.Close()
}
