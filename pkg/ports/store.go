package ports

import (
	"context"

	"github.com/aretw0/stitch/pkg/domain"
)

// StateStore persists the state of one wizard instance, scoped by StateKey.
// Implementations perform no locking; concurrent submissions for the same key
// are last-writer-wins.
type StateStore interface {
	// Get returns the stored values for key.
	// A key that was never written (or was cleared) yields an empty map and no error.
	Get(ctx context.Context, key domain.StateKey) (domain.Values, error)

	// Put replaces the stored values for key.
	Put(ctx context.Context, key domain.StateKey, values domain.Values) error

	// Clear removes the stored values for key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key domain.StateKey) error
}
