package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
)

// Check reports every structural problem of a wizard definition:
// missing or malformed ids, duplicate step or field keys, steps that do not use exactly one
// field container, unknown field types, choice fields without options and
// malformed visibility conditions.
func Check(def *domain.WizardDefinition) error {
	var errs []error
	bad := func(stepKey, format string, args ...any) {
		errs = append(errs, &domain.ConfigurationError{
			WizardID: def.ID,
			StepKey:  stepKey,
			Reason:   fmt.Sprintf(format, args...),
			Err:      domain.ErrInvalidDefinition,
		})
	}

	if def.ID == "" {
		bad("", "wizard id is empty")
	}
	// State keys join session and wizard ids with ':'.
	if strings.Contains(def.ID, ":") {
		bad("", "wizard id %q contains ':'", def.ID)
	}
	if len(def.Steps) == 0 {
		bad("", "wizard has no steps")
	}

	seenSteps := make(map[string]bool, len(def.Steps))
	for i := range def.Steps {
		step := &def.Steps[i]
		if step.Key == "" {
			bad("", "step #%d has an empty key", i+1)
			continue
		}
		if seenSteps[step.Key] {
			bad(step.Key, "duplicate step key")
		}
		seenSteps[step.Key] = true

		if err := CheckContainers(def.ID, step); err != nil {
			errs = append(errs, err)
			continue
		}

		seenFields := make(map[string]bool)
		for _, f := range step.AllFields() {
			if f.Key == "" {
				bad(step.Key, "field with empty key")
				continue
			}
			if seenFields[f.Key] {
				bad(step.Key, "duplicate field key %q", f.Key)
			}
			seenFields[f.Key] = true

			if !f.Type.IsKnown() {
				bad(step.Key, "field %q has unknown type %q", f.Key, f.Type)
			}
			if f.Type.RequiresOptions() && len(f.Options) == 0 {
				bad(step.Key, "field %q of type %s declares no options", f.Key, f.Type)
			}
			if f.Visibility != nil {
				if f.Visibility.Logic != "" && f.Visibility.Logic != domain.LogicAll && f.Visibility.Logic != domain.LogicAny {
					bad(step.Key, "field %q has unknown visibility logic %q", f.Key, f.Visibility.Logic)
				}
				for j, c := range f.Visibility.Rules {
					if c.Path == "" {
						bad(step.Key, "field %q visibility rule #%d has an empty path", f.Key, j+1)
					}
					if !c.Op.Valid() {
						bad(step.Key, "field %q visibility rule #%d has an invalid operator", f.Key, j+1)
					}
				}
			}
		}
	}

	return errors.Join(errs...)
}

// CheckContainers verifies that a step uses exactly one of its two field containers.
func CheckContainers(wizardID string, step *domain.Step) error {
	hasFields, hasSections := len(step.Fields) > 0, len(step.Sections) > 0
	switch {
	case hasFields && hasSections:
		return &domain.ConfigurationError{WizardID: wizardID, StepKey: step.Key, Reason: "step declares both fields and sections", Err: domain.ErrInvalidDefinition}
	case !hasFields && !hasSections:
		return &domain.ConfigurationError{WizardID: wizardID, StepKey: step.Key, Reason: "step declares neither fields nor sections", Err: domain.ErrInvalidDefinition}
	}
	return nil
}
