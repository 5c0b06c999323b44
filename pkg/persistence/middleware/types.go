// Package middleware decorates a ports.StateStore with storage-side behavior
// such as encryption at rest and masking of sensitive fields.
package middleware

import "github.com/aretw0/stitch/pkg/ports"

// Middleware allows wrapping a StateStore to add behavior.
type Middleware func(ports.StateStore) ports.StateStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.StateStore, mws ...Middleware) ports.StateStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
