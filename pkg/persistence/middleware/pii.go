package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// Mask replaces the value of every field whose key matches a masking pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of keys matching the
// patterns before they reach the underlying store. Masked values come back as
// Mask on the next read, so it suits fields that must never be persisted.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Put(ctx context.Context, key domain.StateKey, values domain.Values) error {
	// The engine keeps using its own copy.
	masked := make(domain.Values, len(values))
	for k, v := range values {
		masked[k] = m.mask(k, v)
	}
	return m.next.Put(ctx, key, masked)
}

func (m *piiMiddleware) Get(ctx context.Context, key domain.StateKey) (domain.Values, error) {
	return m.next.Get(ctx, key)
}

func (m *piiMiddleware) Clear(ctx context.Context, key domain.StateKey) error {
	return m.next.Clear(ctx, key)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) mask(key string, v any) any {
	if m.matches(key) {
		return Mask
	}
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = m.mask(k, sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = m.mask("", sub)
		}
		return out
	default:
		return v
	}
}
