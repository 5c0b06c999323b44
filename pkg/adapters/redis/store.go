package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/stitch/pkg/domain"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "stitch:"

// Sub-namespaces under the prefix. A state key always starts with stateSpace,
// so no session id can produce a lock or index key.
const (
	stateSpace = "state:"
	lockSpace  = "lock:"
	indexSpace = "index"
)

// noExpiry is the index score used when no TTL is set (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.StateStore using Redis.
// Each wizard state is a JSON string under <prefix>state:<session>:<wizard>; a
// sorted set under <prefix>index tracks live keys by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for wizard state. Every Put refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the clock used to score the index.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(key domain.StateKey) string {
	return s.prefix + stateSpace + key.String()
}

func (s *Store) indexKey() string {
	return s.prefix + indexSpace
}

// Get loads the state for key. A missing or expired key yields empty values.
func (s *Store) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Values{}, nil
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	values := domain.Values{}
	if err := json.Unmarshal([]byte(val), &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard state: %w", err)
	}
	return values, nil
}

// Put persists values and refreshes the index entry.
func (s *Store) Put(ctx context.Context, key domain.StateKey, values domain.Values) error {
	if values == nil {
		values = domain.Values{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard state: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: key.String(),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Clear removes the state for key.
func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear redis state: %w", err)
	}
	return nil
}

// Sessions returns the ids of sessions holding live wizard state.
// Expired index entries are pruned lazily.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	now := float64(s.now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	seen := make(map[string]bool, len(members))
	sessions := []string{}
	for _, m := range members {
		// registry.Check rejects ':' in wizard ids; session ids may contain it.
		i := strings.LastIndex(m, ":")
		if i < 0 {
			continue
		}
		if id := m[:i]; !seen[id] {
			seen[id] = true
			sessions = append(sessions, id)
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
