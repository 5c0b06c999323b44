package memory

import (
	"context"
	"sync"

	"github.com/aretw0/stitch/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[domain.StateKey]domain.Values
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[domain.StateKey]domain.Values),
	}
}

// Get returns a copy of the stored values, or an empty map when the key is unknown.
func (s *Store) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.data[key]
	if !ok {
		return domain.Values{}, nil
	}
	// Copy on read so callers can't mutate store state through the map.
	return deepCopy(values), nil
}

// Put replaces the values stored under key.
func (s *Store) Put(ctx context.Context, key domain.StateKey, values domain.Values) error {
	copied := deepCopy(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Clear removes the values stored under key.
func (s *Store) Clear(ctx context.Context, key domain.StateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of stored wizard states.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func deepCopy(values domain.Values) domain.Values {
	out := make(domain.Values, len(values))
	for k, v := range values {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = copyValue(val)
		}
		return m
	case domain.Values:
		return deepCopy(t)
	case []any:
		l := make([]any, len(t))
		for i, val := range t {
			l[i] = copyValue(val)
		}
		return l
	}
	return v
}
