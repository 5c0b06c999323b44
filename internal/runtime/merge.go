package runtime

import "github.com/aretw0/stitch/pkg/domain"

// Merge overlays submitted onto stored and returns a new map.
// Keys missing from submitted keep their stored values, including answers to
// fields that are currently hidden. Neither input is modified.
func Merge(stored, submitted domain.Values) domain.Values {
	out := make(domain.Values, len(stored)+len(submitted))
	for k, v := range stored {
		out[k] = v
	}
	for k, v := range submitted {
		out[k] = v
	}
	return out
}
