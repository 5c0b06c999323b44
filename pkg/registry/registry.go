// Package registry holds the wizard definitions known to an engine.
//
// A Registry is built once from a set of definitions, checked for structural
// problems, and never modified afterwards. It implements ports.DefinitionSource.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/stitch/pkg/domain"
)

// Registry is an immutable, validated set of wizard definitions.
type Registry struct {
	wizards map[string]*domain.WizardDefinition
	ids     []string
}

// New checks every definition and builds a registry.
// All problems are reported together, joined with errors.Join.
func New(defs ...domain.WizardDefinition) (*Registry, error) {
	r := &Registry{wizards: make(map[string]*domain.WizardDefinition, len(defs))}

	var errs []error
	for i := range defs {
		def := normalize(defs[i])
		if _, dup := r.wizards[def.ID]; dup {
			errs = append(errs, &domain.ConfigurationError{
				WizardID: def.ID,
				Reason:   "duplicate wizard id",
				Err:      domain.ErrInvalidDefinition,
			})
			continue
		}
		if err := Check(def); err != nil {
			errs = append(errs, err)
			continue
		}
		r.wizards[def.ID] = def
		r.ids = append(r.ids, def.ID)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sort.Strings(r.ids)
	return r, nil
}

// MustNew is like New but panics on invalid definitions. Intended for tests and static setups.
func MustNew(defs ...domain.WizardDefinition) *Registry {
	r, err := New(defs...)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return r
}

// Load returns the definition registered under id.
// The returned definition is shared and must be treated as read-only.
func (r *Registry) Load(id string) (*domain.WizardDefinition, error) {
	def, ok := r.wizards[id]
	if !ok {
		return nil, &domain.ConfigurationError{WizardID: id, Err: domain.ErrWizardNotFound}
	}
	return def, nil
}

// List returns the registered wizard ids in sorted order.
func (r *Registry) List() ([]string, error) {
	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out, nil
}

// Len returns the number of registered wizards.
func (r *Registry) Len() int {
	return len(r.ids)
}

// normalize returns a private copy of def with defaults applied.
func normalize(def domain.WizardDefinition) *domain.WizardDefinition {
	out := def
	out.Steps = make([]domain.Step, len(def.Steps))
	for i, step := range def.Steps {
		s := step
		s.Fields = normalizeFields(step.Fields)
		if step.Sections != nil {
			s.Sections = make([]domain.Section, len(step.Sections))
			for j, sec := range step.Sections {
				s.Sections[j] = domain.Section{Title: sec.Title, Fields: normalizeFields(sec.Fields)}
			}
		}
		if s.Title == "" {
			s.Title = s.Key
		}
		out.Steps[i] = s
	}
	if out.Title == "" {
		out.Title = out.ID
	}
	return &out
}

func normalizeFields(fields []domain.Field) []domain.Field {
	if fields == nil {
		return nil
	}
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		if f.Type == "" {
			f.Type = domain.FieldText
		}
		if f.Label == "" {
			f.Label = f.Key
		}
		if f.Visibility != nil {
			vis := *f.Visibility
			vis.Logic = vis.EffectiveLogic()
			vis.Rules = append([]domain.Condition(nil), vis.Rules...)
			f.Visibility = &vis
		}
		out[i] = f
	}
	return out
}
