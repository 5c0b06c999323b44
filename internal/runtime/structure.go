package runtime

import (
	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
	"github.com/aretw0/stitch/pkg/visibility"
)

// ResolveStep computes the visible structure of step for ctx.
//
// Sectioned steps keep their section order, drop sections left without visible
// fields and expose the flattened field list. Flat steps are filtered directly
// and report no sections.
func ResolveStep(step *domain.Step, ctx domain.Values) (*domain.ResolvedStep, error) {
	if err := registry.CheckContainers("", step); err != nil {
		return nil, err
	}

	if !step.HasSections() {
		return &domain.ResolvedStep{Fields: visibility.Filter(ctx, step.Fields)}, nil
	}

	resolved := &domain.ResolvedStep{
		Sections: []domain.ResolvedSection{},
		Fields:   []domain.Field{},
	}
	for _, sec := range step.Sections {
		fields := visibility.Filter(ctx, sec.Fields)
		if len(fields) == 0 {
			continue
		}
		resolved.Sections = append(resolved.Sections, domain.ResolvedSection{Title: sec.Title, Fields: fields})
		resolved.Fields = append(resolved.Fields, fields...)
	}
	return resolved, nil
}
