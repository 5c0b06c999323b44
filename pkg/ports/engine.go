package ports

import (
	"context"

	"github.com/aretw0/stitch/pkg/domain"
)

// WizardEngine is the interface used by adapters (e.g., HTTP, MCP, terminal)
// that drive wizards on behalf of a caller-identified session.
type WizardEngine interface {
	// Render returns the view of stepKey. An empty stepKey renders the first step.
	Render(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error)

	// Submit validates input against the visible fields of stepKey and, on success,
	// merges it into the stored state.
	// On validation failure it returns both a result carrying the errors and a *domain.ValidationError.
	Submit(ctx context.Context, sessionID, wizardID, stepKey string, input domain.Values) (*domain.SubmitResult, error)

	// Back returns the view of the step before stepKey without touching state.
	Back(ctx context.Context, sessionID, wizardID, stepKey string) (*domain.StepView, error)

	// Finalize clears the stored state of the wizard instance.
	Finalize(ctx context.Context, sessionID, wizardID string) error

	// Definition returns the wizard definition, for introspection.
	Definition(wizardID string) (*domain.WizardDefinition, error)

	// Wizards lists the available wizard ids.
	Wizards() ([]string, error)
}
