package dsl

import "github.com/aretw0/stitch/pkg/domain"

// FieldBuilder provides a fluent API for configuring a field.
type FieldBuilder struct {
	field domain.Field
}

func newField(key string) *FieldBuilder {
	return &FieldBuilder{field: domain.Field{Key: key, Type: domain.FieldText}}
}

// Type sets the input type.
func (f *FieldBuilder) Type(t domain.FieldType) *FieldBuilder {
	f.field.Type = t
	return f
}

// Label sets the display label.
func (f *FieldBuilder) Label(label string) *FieldBuilder {
	f.field.Label = label
	return f
}

// Help sets the help text shown under the input.
func (f *FieldBuilder) Help(text string) *FieldBuilder {
	f.field.Help = text
	return f
}

// Placeholder sets the input placeholder.
func (f *FieldBuilder) Placeholder(text string) *FieldBuilder {
	f.field.Placeholder = text
	return f
}

// Rules appends validation rule descriptors such as "required" or "min:2".
func (f *FieldBuilder) Rules(rules ...string) *FieldBuilder {
	f.field.Rules = append(f.field.Rules, rules...)
	return f
}

// Option appends one choice with an explicit label.
func (f *FieldBuilder) Option(value, label string) *FieldBuilder {
	f.field.Options = append(f.field.Options, domain.Option{Value: value, Label: label})
	return f
}

// Select makes the field a single choice among values, each labelled by itself.
func (f *FieldBuilder) Select(values ...string) *FieldBuilder {
	f.field.Type = domain.FieldSelect
	for _, v := range values {
		f.Option(v, v)
	}
	return f
}

// ShowWhen adds a condition the field needs to be visible.
// Conditions added this way must all hold unless Any is called.
func (f *FieldBuilder) ShowWhen(path string, op domain.Operator, value any) *FieldBuilder {
	return f.ShowIf(When(path, op, value))
}

// ShowIf adds ready-made conditions to the visibility group.
func (f *FieldBuilder) ShowIf(conditions ...domain.Condition) *FieldBuilder {
	if f.field.Visibility == nil {
		f.field.Visibility = &domain.RuleGroup{Logic: domain.LogicAll}
	}
	f.field.Visibility.Rules = append(f.field.Visibility.Rules, conditions...)
	return f
}

// Any makes the field visible when at least one of its conditions holds.
func (f *FieldBuilder) Any() *FieldBuilder {
	if f.field.Visibility == nil {
		f.field.Visibility = &domain.RuleGroup{}
	}
	f.field.Visibility.Logic = domain.LogicAny
	return f
}

// Build returns the underlying domain.Field.
func (f *FieldBuilder) Build() domain.Field {
	field := f.field
	field.Rules = append([]string(nil), f.field.Rules...)
	field.Options = append([]domain.Option(nil), f.field.Options...)
	if f.field.Visibility != nil {
		vis := *f.field.Visibility
		vis.Rules = append([]domain.Condition(nil), vis.Rules...)
		field.Visibility = &vis
	}
	return field
}

// When builds a single condition.
func When(path string, op domain.Operator, value any) domain.Condition {
	return domain.Condition{Path: path, Op: op, Value: value}
}
