package dsl

import (
	"fmt"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/registry"
)

// Builder manages the construction of a set of wizards.
type Builder struct {
	wizards []*WizardBuilder
	byID    map[string]*WizardBuilder
}

// New creates a new wizard builder.
func New() *Builder {
	return &Builder{
		byID: make(map[string]*WizardBuilder),
	}
}

// Add creates a new wizard.
// If the wizard already exists, it returns the existing builder.
func (b *Builder) Add(id string) *WizardBuilder {
	if wb, ok := b.byID[id]; ok {
		return wb
	}
	wb := &WizardBuilder{
		def:   domain.WizardDefinition{ID: id},
		steps: make(map[string]*StepBuilder),
	}
	b.wizards = append(b.wizards, wb)
	b.byID[id] = wb
	return wb
}

// Definitions returns the wizards in the order they were added.
func (b *Builder) Definitions() []domain.WizardDefinition {
	defs := make([]domain.WizardDefinition, 0, len(b.wizards))
	for _, wb := range b.wizards {
		defs = append(defs, wb.Build())
	}
	return defs
}

// Build checks the wizards and compiles them into a Registry.
func (b *Builder) Build() (*registry.Registry, error) {
	reg, err := registry.New(b.Definitions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return reg, nil
}

// WizardBuilder provides a fluent API for configuring a wizard.
type WizardBuilder struct {
	def   domain.WizardDefinition
	order []*StepBuilder
	steps map[string]*StepBuilder
}

// Title sets the display title of the wizard.
func (w *WizardBuilder) Title(title string) *WizardBuilder {
	w.def.Title = title
	return w
}

// Description sets the wizard description.
func (w *WizardBuilder) Description(text string) *WizardBuilder {
	w.def.Description = text
	return w
}

// Step returns the step with the given key, appending it if it does not exist yet.
// Steps are ordered by their first call.
func (w *WizardBuilder) Step(key string) *StepBuilder {
	if sb, ok := w.steps[key]; ok {
		return sb
	}
	sb := &StepBuilder{key: key}
	w.order = append(w.order, sb)
	w.steps[key] = sb
	return sb
}

// Build returns the underlying domain.WizardDefinition.
func (w *WizardBuilder) Build() domain.WizardDefinition {
	def := w.def
	def.Steps = make([]domain.Step, 0, len(w.order))
	for _, sb := range w.order {
		def.Steps = append(def.Steps, sb.build())
	}
	return def
}

// StepBuilder provides a fluent API for configuring a step.
// A step holds either plain fields or sections; mixing both is reported by Build.
type StepBuilder struct {
	key      string
	title    string
	fields   []*FieldBuilder
	sections []*SectionBuilder
}

// Title sets the display title of the step.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.title = title
	return s
}

// Field appends a field directly to the step.
func (s *StepBuilder) Field(key string) *FieldBuilder {
	fb := newField(key)
	s.fields = append(s.fields, fb)
	return fb
}

// Section appends a titled group of fields to the step.
func (s *StepBuilder) Section(title string) *SectionBuilder {
	sb := &SectionBuilder{title: title}
	s.sections = append(s.sections, sb)
	return sb
}

func (s *StepBuilder) build() domain.Step {
	step := domain.Step{Key: s.key, Title: s.title}
	for _, fb := range s.fields {
		step.Fields = append(step.Fields, fb.Build())
	}
	for _, sb := range s.sections {
		sec := domain.Section{Title: sb.title}
		for _, fb := range sb.fields {
			sec.Fields = append(sec.Fields, fb.Build())
		}
		step.Sections = append(step.Sections, sec)
	}
	return step
}

// SectionBuilder collects the fields of one section.
type SectionBuilder struct {
	title  string
	fields []*FieldBuilder
}

// Field appends a field to the section.
func (s *SectionBuilder) Field(key string) *FieldBuilder {
	fb := newField(key)
	s.fields = append(s.fields, fb)
	return fb
}
