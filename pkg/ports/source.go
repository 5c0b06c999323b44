package ports

import "github.com/aretw0/stitch/pkg/domain"

// DefinitionSource resolves wizard definitions by id.
type DefinitionSource interface {
	// Load returns the definition for id, or an error wrapping domain.ErrWizardNotFound.
	Load(id string) (*domain.WizardDefinition, error)

	// List returns the ids of every available wizard, sorted.
	List() ([]string, error)
}
