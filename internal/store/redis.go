// Package store keeps portal resources as JSON documents in Redis.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "portal"
	maxRetries = 5
	scanBatch  = 100
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict indicates the document changed under a conditional write.
	ErrConflict = errors.New("store: conflict")
)

// Document is a stored resource.
type Document = map[string]any

// Guard inspects the current document inside a conditional write and
// returns an error (usually wrapping ErrConflict) to abort it.
type Guard func(current Document) error

// FieldEquals guards on field holding want.
func FieldEquals(field string, want any) Guard {
	return func(current Document) error {
		if got := current[field]; got != want {
			return fmt.Errorf("%w: %s is %v, expected %v", ErrConflict, field, got, want)
		}
		return nil
	}
}

// RedisStore persists documents under portal:{kind}:{id}.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(kind, id string) string {
	return keyPrefix + ":" + kind + ":" + id
}

// Get loads a document.
func (s *RedisStore) Get(ctx context.Context, kind, id string) (Document, error) {
	raw, err := s.client.Get(ctx, key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// Put stores doc, replacing any existing document. The id field is set to id.
func (s *RedisStore) Put(ctx context.Context, kind, id string, doc Document) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("store: id required")
	}
	stored := make(Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}
	stored["id"] = id
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(kind, id), raw, 0).Err()
}

// Update merges patch into the stored document when guard accepts the
// current version. The read and the write happen under WATCH, so a
// concurrent writer makes the transaction retry against the new state.
func (s *RedisStore) Update(ctx context.Context, kind, id string, guard Guard, patch Document) (Document, error) {
	k := key(kind, id)
	var updated Document
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		if err != nil {
			return err
		}
		current, err := decode(raw)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(current); err != nil {
				return err
			}
		}
		for field, v := range patch {
			if field == "id" {
				continue
			}
			current[field] = v
		}
		next, err := json.Marshal(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = current
		return nil
	}

	for i := 0; i < maxRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("%w: %s %s changed concurrently", ErrConflict, kind, id)
}

// Delete removes a document.
func (s *RedisStore) Delete(ctx context.Context, kind, id string) error {
	n, err := s.client.Del(ctx, key(kind, id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

// Each calls fn for every document of kind. Iteration stops at the first error.
func (s *RedisStore) Each(ctx context.Context, kind string, fn func(Document) error) error {
	iter := s.client.Scan(ctx, 0, key(kind, "*"), scanBatch).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}
		doc, err := decode(raw)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return iter.Err()
}

func decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: decode: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}
