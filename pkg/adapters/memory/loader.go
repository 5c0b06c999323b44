package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

// NewLoader decodes JSON wizard documents keyed by wizard id and returns a
// checked registry. A document without an "id" takes the id of its key.
func NewLoader(data map[string]string) (*registry.Registry, error) {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	defs := make([]domain.WizardDefinition, 0, len(ids))
	for _, id := range ids {
		var def domain.WizardDefinition
		if err := json.Unmarshal([]byte(data[id]), &def); err != nil {
			return nil, fmt.Errorf("failed to decode wizard %s: %w", id, err)
		}
		if def.ID == "" {
			def.ID = id
		}
		if def.ID != id {
			return nil, fmt.Errorf("wizard %s declares mismatching id %q", id, def.ID)
		}
		defs = append(defs, def)
	}
	return registry.New(defs...)
}
