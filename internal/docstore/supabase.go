package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/supabase-community/supabase-go"

	"geminios/internal/logging"
)

// supabaseStore implements Store on a Supabase table (one row per document).
// PostgREST has no push channel, so remote changes are detected by polling
// the row revision at a configured interval; local writes are echoed through
// the in-process notifier immediately.
type supabaseStore struct {
	client   *supabase.Client
	table    string
	poll     time.Duration
	notifier *notifier
}

// documentRow is the table shape: key text primary key, fields jsonb,
// rev bigint.
type documentRow struct {
	Key    string          `json:"key"`
	Fields json.RawMessage `json:"fields"`
	Rev    int64           `json:"rev"`
}

func newSupabaseStore(client *supabase.Client, table string, poll time.Duration) (*supabaseStore, error) {
	if client == nil {
		return nil, ErrInvalidConfig
	}
	if table == "" {
		table = "documents"
	}
	if poll <= 0 {
		poll = 3 * time.Second
	}
	return &supabaseStore{
		client:   client,
		table:    table,
		poll:     poll,
		notifier: newNotifier(),
	}, nil
}

func (r documentRow) toDocument() (Document, error) {
	var fields map[string]json.RawMessage
	if len(r.Fields) > 0 {
		if err := json.Unmarshal(r.Fields, &fields); err != nil {
			return Document{}, fmt.Errorf("corrupt document %s: %w", r.Key, err)
		}
	}
	return Document{Key: r.Key, Fields: fields, Rev: r.Rev}, nil
}

// Get implements Store.
func (s *supabaseStore) Get(ctx context.Context, key string) (Document, error) {
	var rows []documentRow
	_, err := s.client.From(s.table).
		Select("*", "", false).
		Eq("key", key).
		ExecuteTo(&rows)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}
	if len(rows) == 0 {
		return Document{}, ErrNotFound
	}
	return rows[0].toDocument()
}

// Set implements Store.
func (s *supabaseStore) Set(ctx context.Context, key string, fields map[string]any) error {
	updates, err := encodeFields(fields)
	if err != nil {
		return err
	}

	existing, err := s.Get(ctx, key)
	if err != nil && err != ErrNotFound {
		return err
	}

	doc := Document{
		Key:    key,
		Fields: mergeFields(existing.Fields, updates),
		Rev:    existing.Rev + 1,
	}
	merged, err := json.Marshal(doc.Fields)
	if err != nil {
		return err
	}

	row := documentRow{Key: key, Fields: merged, Rev: doc.Rev}
	var returned []documentRow
	_, err = s.client.From(s.table).
		Insert(row, true, "key", "representation", "").
		ExecuteTo(&returned)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	// Echo the commit locally; remote peers pick it up on their next poll.
	s.notifier.publish(Event{Key: key, Doc: doc, Exists: true})
	return nil
}

// Subscribe implements Store.
func (s *supabaseStore) Subscribe(ctx context.Context, key string) (<-chan Event, CancelFunc, error) {
	doc, err := s.Get(ctx, key)
	exists := true
	if err == ErrNotFound {
		exists = false
	} else if err != nil {
		return nil, nil, err
	}

	local, cancelLocal := s.notifier.subscribe(key)
	out := make(chan Event, mailboxSize)
	out <- Event{Key: key, Doc: doc, Exists: exists}

	done := make(chan struct{})
	go func() {
		defer close(out)
		lastRev := doc.Rev
		ticker := time.NewTicker(s.poll)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case ev, ok := <-local:
				if !ok {
					return
				}
				if ev.Doc.Rev > lastRev {
					lastRev = ev.Doc.Rev
				}
				select {
				case out <- ev:
				case <-done:
					return
				}
			case <-ticker.C:
				latest, err := s.Get(ctx, key)
				if err != nil {
					if err != ErrNotFound {
						logging.StoreError("poll failed for %s: %v", key, err)
					}
					continue
				}
				if latest.Rev <= lastRev {
					continue
				}
				lastRev = latest.Rev
				select {
				case out <- Event{Key: key, Doc: latest, Exists: true}:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			cancelLocal()
		})
	}
	return out, cancel, nil
}

// Close implements Store.
func (s *supabaseStore) Close() error {
	s.notifier.closeAll()
	return nil
}
