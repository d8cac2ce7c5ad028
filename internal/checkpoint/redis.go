package checkpoint

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"loom/internal/session"
)

// RedisStore persists checkpoints in Redis. Each session's snapshot lives
// under a prefixed key; a sorted-set index keyed by update time backs List.
type RedisStore struct {
	client *backend.Client
	prefix string
}

// RedisOption customizes a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the default key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to Redis at addr.
func NewRedisStore(addr, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient wraps an existing Redis client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		prefix: "loom:checkpoint:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Save overwrites the snapshot for the state's session id and refreshes the
// session's position in the index.
func (s *RedisStore) Save(ctx context.Context, state *session.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(state.SessionID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(state.UpdatedAt.UnixNano()),
		Member: state.SessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", state.SessionID, err)
	}
	return nil
}

// Load returns the latest snapshot for the session.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*session.State, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load checkpoint %s: %w", sessionID, err)
	}
	return decodeState([]byte(val))
}

// List returns every stored snapshot, newest first by index score.
func (s *RedisStore) List(ctx context.Context) ([]*session.State, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}

	states := make([]*session.State, 0, len(ids))
	for _, id := range ids {
		state, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// Index entry outlived the snapshot; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
