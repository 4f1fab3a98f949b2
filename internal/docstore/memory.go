package docstore

import (
	"context"
	"sync"
)

// memoryStore implements Store with an in-process map. Used by tests and by
// the TUI when no persistence is configured.
type memoryStore struct {
	mu       sync.RWMutex
	docs     map[string]Document
	notifier *notifier
	closed   bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs:     make(map[string]Document),
		notifier: newNotifier(),
	}
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, key string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Document{}, ErrClosed
	}
	doc, ok := s.docs[key]
	if !ok {
		return Document{}, ErrNotFound
	}
	doc.Fields = cloneFields(doc.Fields)
	return doc, nil
}

// Set implements Store.
func (s *memoryStore) Set(ctx context.Context, key string, fields map[string]any) error {
	updates, err := encodeFields(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	existing := s.docs[key]
	doc := Document{
		Key:    key,
		Fields: mergeFields(existing.Fields, updates),
		Rev:    existing.Rev + 1,
	}
	s.docs[key] = doc
	s.mu.Unlock()

	s.notifier.publish(Event{Key: key, Doc: doc, Exists: true})
	return nil
}

// Subscribe implements Store. The current state is queued before the
// subscription is handed back, so the first receive always reflects the
// document as of subscribe time.
func (s *memoryStore) Subscribe(ctx context.Context, key string) (<-chan Event, CancelFunc, error) {
	// Registration and the initial snapshot happen under the store lock so
	// no committed write can slip between them.
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, nil, ErrClosed
	}
	doc, ok := s.docs[key]
	ch, cancel := s.notifier.subscribe(key)
	ch <- Event{Key: key, Doc: doc, Exists: ok}
	return ch, cancel, nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.docs = nil
	s.mu.Unlock()

	s.notifier.closeAll()
	return nil
}
