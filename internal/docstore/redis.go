package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"geminios/internal/logging"
)

// redisStore implements Store on Redis: one JSON value per document plus a
// pub/sub channel per key carrying the full document body on every commit.
// Merge-writes use WATCH-based compare-and-set so two clients cannot
// interleave a read-merge-write cycle.
type redisStore struct {
	client *redis.Client
}

const (
	redisKeyPrefix     = "geminios:doc:"
	redisChannelPrefix = "geminios:changes:"
)

// redisDocument is the stored JSON shape.
type redisDocument struct {
	Fields map[string]json.RawMessage `json:"fields"`
	Rev    int64                      `json:"rev"`
}

func newRedisStore(client *redis.Client) (*redisStore, error) {
	if client == nil {
		return nil, ErrInvalidConfig
	}
	return &redisStore{client: client}, nil
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, key string) (Document, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document: %w", err)
	}

	var stored redisDocument
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return Document{}, fmt.Errorf("corrupt document %s: %w", key, err)
	}
	return Document{Key: key, Fields: stored.Fields, Rev: stored.Rev}, nil
}

// Set implements Store.
func (s *redisStore) Set(ctx context.Context, key string, fields map[string]any) error {
	updates, err := encodeFields(fields)
	if err != nil {
		return err
	}

	redisKey := redisKeyPrefix + key
	var committed Document

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		var stored redisDocument
		val, err := tx.Get(ctx, redisKey).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			if err := json.Unmarshal([]byte(val), &stored); err != nil {
				return fmt.Errorf("corrupt document %s: %w", key, err)
			}
		}

		stored.Fields = mergeFields(stored.Fields, updates)
		stored.Rev++

		newVal, err := json.Marshal(stored)
		if err != nil {
			return err
		}

		committed = Document{Key: key, Fields: stored.Fields, Rev: stored.Rev}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, string(newVal), 0)
			return nil
		})
		return err
	}, redisKey)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	// The commit is durable; notify subscribers on every connected client.
	payload, err := json.Marshal(redisDocument{Fields: committed.Fields, Rev: committed.Rev})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, redisChannelPrefix+key, string(payload)).Err(); err != nil {
		logging.StoreError("publish failed for %s: %v", key, err)
	}
	return nil
}

// Subscribe implements Store.
func (s *redisStore) Subscribe(ctx context.Context, key string) (<-chan Event, CancelFunc, error) {
	pubsub := s.client.Subscribe(ctx, redisChannelPrefix+key)
	// Force the subscription onto the wire before reading the snapshot so
	// no commit lands between snapshot and subscription.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, mailboxSize)

	doc, err := s.Get(ctx, key)
	exists := true
	if err == ErrNotFound {
		exists = false
	} else if err != nil {
		pubsub.Close()
		return nil, nil, err
	}
	out <- Event{Key: key, Doc: doc, Exists: exists}

	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var stored redisDocument
				if err := json.Unmarshal([]byte(msg.Payload), &stored); err != nil {
					logging.StoreError("bad change payload for %s: %v", key, err)
					continue
				}
				ev := Event{
					Key:    key,
					Doc:    Document{Key: key, Fields: stored.Fields, Rev: stored.Rev},
					Exists: true,
				}
				select {
				case out <- ev:
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
			pubsub.Close()
		})
	}
	return out, cancel, nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
