package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/ports"
)

// NarrowInput keeps only the submitted keys that belong to a visible field.
func NarrowInput(input domain.Values, visible *domain.ResolvedStep) domain.Values {
	out := make(domain.Values, len(visible.Fields))
	for _, f := range visible.Fields {
		if v, ok := input[f.Key]; ok {
			out[f.Key] = v
		}
	}
	return out
}

// Dispatcher forwards the visible, rule-bearing fields of a step to a Validator.
type Dispatcher struct {
	validator ports.Validator
}

// NewDispatcher creates a dispatcher. A nil validator accepts every submission.
func NewDispatcher(v ports.Validator) *Dispatcher {
	return &Dispatcher{validator: v}
}

// Validate checks input against the visible fields of a resolved step.
// Input is narrowed to visible keys first, and errors the validator reports for
// keys outside the visible set are discarded. A nil result means the step passed.
func (d *Dispatcher) Validate(ctx context.Context, input domain.Values, visible *domain.ResolvedStep) (domain.FieldErrors, error) {
	if d.validator == nil {
		return nil, nil
	}

	var ruled []domain.Field
	for _, f := range visible.Fields {
		if len(f.Rules) > 0 {
			ruled = append(ruled, f)
		}
	}
	if len(ruled) == 0 {
		return nil, nil
	}

	errs, err := d.validator.Validate(ctx, NarrowInput(input, visible), ruled)
	if err != nil {
		return nil, fmt.Errorf("validator failed: %w", err)
	}

	result := domain.FieldErrors{}
	for key, msgs := range errs {
		if len(msgs) > 0 && visible.Has(key) {
			result[key] = msgs
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}
