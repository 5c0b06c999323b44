package loam

import (
	"fmt"

	"github.com/aretw0/loam/pkg/core"
	"github.com/mitchellh/mapstructure"
)

// WizardMetadata is the frontmatter (or JSON/YAML body) of a wizard document.
// Steps stay untyped here and go through the shared definition decoder, so
// every document format accepts the same shorthands.
type WizardMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Title       string `json:"title" mapstructure:"title"`
	Description string `json:"description" mapstructure:"description"`
	Steps       []any  `json:"steps" mapstructure:"steps"`
}

// decodeMetadata reads the raw document metadata as parsed by Loam. Nested
// values are kept as parsed, including maps with non-string keys.
func decodeMetadata(raw core.Metadata) (WizardMetadata, error) {
	var meta WizardMetadata
	if err := mapstructure.Decode(map[string]any(raw), &meta); err != nil {
		return WizardMetadata{}, fmt.Errorf("failed to decode wizard metadata: %w", err)
	}
	return meta, nil
}
