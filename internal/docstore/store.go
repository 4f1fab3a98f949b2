// Package docstore is the boundary to the remote document store. A document
// is a named, whole-object unit of storage keyed by user identity plus
// logical kind. Reads are subscription-based (full document pushed on every
// change); writes are merge-writes at the top-level field granularity.
package docstore

import (
	"context"
	"encoding/json"
)

// Document is a whole-object unit of remote storage. Fields holds the
// top-level keys as raw JSON; Rev increases on every committed write.
type Document struct {
	Key    string
	Fields map[string]json.RawMessage
	Rev    int64
}

// Event is a "document replaced" notification. Exists is false when the
// subscribed document does not exist yet (or was observed missing at
// subscribe time).
type Event struct {
	Key    string
	Doc    Document
	Exists bool
}

// CancelFunc releases a subscription. Safe to call more than once; no event
// is delivered after it returns.
type CancelFunc func()

// Store defines the document store operations.
type Store interface {
	// Get retrieves a document by key. Returns ErrNotFound if missing.
	Get(ctx context.Context, key string) (Document, error)

	// Set merge-writes the given top-level fields: each named field is
	// replaced wholesale, unnamed fields are preserved. Creates the
	// document if it does not exist.
	Set(ctx context.Context, key string, fields map[string]any) error

	// Subscribe registers a change listener for the key. The current state
	// (which may be "missing") is delivered first, then the full document
	// body on every subsequent change.
	Subscribe(ctx context.Context, key string) (<-chan Event, CancelFunc, error)

	// Close releases driver resources.
	Close() error
}

// encodeFields marshals a merge-write payload into raw JSON fields.
func encodeFields(fields map[string]any) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return out, nil
}

// mergeFields applies a merge-write on top of existing fields.
func mergeFields(existing, updates map[string]json.RawMessage) map[string]json.RawMessage {
	merged := make(map[string]json.RawMessage, len(existing)+len(updates))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	return merged
}

// cloneFields copies a field map so callers cannot alias driver state.
func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if fields == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Decode unmarshals one top-level field of a document into v.
// Returns false if the field is absent.
func (d Document) Decode(field string, v any) (bool, error) {
	raw, ok := d.Fields[field]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}
