package runtime

import "github.com/aretw0/stitch/pkg/domain"

// Navigator answers position questions over the fixed step order of a wizard.
type Navigator struct {
	wizardID string
	keys     []string
	index    map[string]int
}

// NewNavigator indexes the steps of def.
func NewNavigator(def *domain.WizardDefinition) *Navigator {
	keys := def.StepKeys()
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		index[k] = i + 1
	}
	return &Navigator{wizardID: def.ID, keys: keys, index: index}
}

// Total returns the number of steps.
func (n *Navigator) Total() int { return len(n.keys) }

// First returns the key of the entry step, or "" for an empty wizard.
func (n *Navigator) First() string {
	if len(n.keys) == 0 {
		return ""
	}
	return n.keys[0]
}

// IndexOf returns the 1-based position of key.
func (n *Navigator) IndexOf(key string) (int, error) {
	i, ok := n.index[key]
	if !ok {
		return 0, &domain.ConfigurationError{WizardID: n.wizardID, StepKey: key, Err: domain.ErrStepNotFound}
	}
	return i, nil
}

// NextKey returns the step after key. ok is false on the last step (or an unknown key),
// meaning the caller should finalize.
func (n *Navigator) NextKey(key string) (next string, ok bool) {
	i, found := n.index[key]
	if !found || i >= len(n.keys) {
		return "", false
	}
	return n.keys[i], true
}

// PreviousKey returns the step before key. ok is false on the first step (or an unknown key),
// meaning the caller should link back to the wizard entry point.
func (n *Navigator) PreviousKey(key string) (prev string, ok bool) {
	i, found := n.index[key]
	if !found || i <= 1 {
		return "", false
	}
	return n.keys[i-2], true
}

// ProgressPercent reports completion before the step at the 1-based index.
// The first step is 0 and the position after the last step is exactly 100.
func ProgressPercent(index, total int) int {
	if total <= 0 {
		return 0
	}
	pct := (index - 1) * 100 / total
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
