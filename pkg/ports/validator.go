package ports

import (
	"context"

	"github.com/aretw0/stitch/pkg/domain"
)

// Validator applies rule descriptors to submitted data.
//
// fields holds only the visible fields of the current step that declare rules.
// A nil or empty result means the data passed. A non-nil error means the
// validator itself failed and is never interpreted as a validation outcome.
type Validator interface {
	Validate(ctx context.Context, data domain.Values, fields []domain.Field) (domain.FieldErrors, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, data domain.Values, fields []domain.Field) (domain.FieldErrors, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, data domain.Values, fields []domain.Field) (domain.FieldErrors, error) {
	return f(ctx, data, fields)
}
