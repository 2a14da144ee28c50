// Package redis provides a Redis-backed DraftStore so drafts survive editor
// restarts and can be shared between hosts.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.DraftStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for drafts. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for drafts.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with its own client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "espalier:draft:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the draft as JSON and tracks it in the index ZSET, scored by
// expiry time so List can prune lazily.
func (s *Store) Save(ctx context.Context, name string, doc *document.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01, effectively never
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: name,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a draft.
func (s *Store) Load(ctx context.Context, name string) (*document.Document, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &doc, nil
}

// Delete removes a draft and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored draft names, pruning expired index entries first. The
// score prune is an optimization; Redis key expiry is authoritative, so any
// indexed name whose draft key is gone is dropped and removed from the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired drafts: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	if len(names) == 0 {
		return names, nil
	}

	pipe := s.client.Pipeline()
	checks := make([]*backend.IntCmd, len(names))
	for i, name := range names {
		checks[i] = pipe.Exists(ctx, s.key(name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check drafts: %w", err)
	}

	live := make([]string, 0, len(names))
	var stale []interface{}
	for i, name := range names {
		if checks[i].Val() == 0 {
			stale = append(stale, name)
			continue
		}
		live = append(live, name)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired drafts: %w", err)
		}
	}
	return live, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
