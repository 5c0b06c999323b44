package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/stitch/pkg/domain"
)

// Validator applies rule descriptors to submitted data.
// It is safe for concurrent use once constructed.
type Validator struct {
	rules    map[string]Factory
	messages map[string]string
}

// Option configures a Validator.
type Option func(*Validator)

// WithRule registers (or replaces) a rule factory under name.
func WithRule(name string, factory Factory) Option {
	return func(v *Validator) {
		v.rules[name] = factory
	}
}

// WithMessage overrides the template for a message key such as "required" or "min.string".
func WithMessage(key, template string) Option {
	return func(v *Validator) {
		v.messages[key] = template
	}
}

// New creates a Validator with the built-in rules.
func New(opts ...Option) *Validator {
	v := &Validator{
		rules:    make(map[string]Factory, len(builtins)),
		messages: make(map[string]string, len(defaultMessages)),
	}
	for name, f := range builtins {
		v.rules[name] = f
	}
	for key, msg := range defaultMessages {
		v.messages[key] = msg
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Parse converts descriptors ("required", "min:2", "in:a,b") into rules.
func (v *Validator) Parse(descriptors []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(descriptors))
	for _, d := range descriptors {
		name, rawParams, hasParams := strings.Cut(strings.TrimSpace(d), ":")
		factory, ok := v.rules[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRule, name)
		}
		var params []string
		if hasParams {
			params = strings.Split(rawParams, ",")
		}
		rule, err := factory(params)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Check parses the rules of every field and reports the first malformed descriptor.
func (v *Validator) Check(fields []domain.Field) error {
	var errs []error
	for _, f := range fields {
		if _, err := v.Parse(f.Rules); err != nil {
			errs = append(errs, fmt.Errorf("field %q: %w", f.Key, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks data against the rules of fields and returns the failures per field key.
func (v *Validator) Validate(ctx context.Context, data domain.Values, fields []domain.Field) (domain.FieldErrors, error) {
	result := domain.FieldErrors{}

	for _, field := range fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rules, err := v.Parse(field.Rules)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Key, err)
		}

		value, present := data[field.Key]
		if !present && hasRule(rules, "sometimes") {
			continue
		}

		subject := &Subject{
			Field:     field,
			Attribute: attributeName(field.Key),
			Value:     value,
			Present:   present,
			Data:      data,
			Numeric:   hasRule(rules, "numeric") || hasRule(rules, "integer"),
		}
		empty := isEmpty(value)

		for _, rule := range rules {
			if empty && !rule.Implicit() {
				continue
			}
			err := rule.Validate(subject)
			if err == nil {
				continue
			}
			var failure *Failure
			if !errors.As(err, &failure) {
				return nil, fmt.Errorf("field %q rule %q: %w", field.Key, rule.Name(), err)
			}
			result.Add(field.Key, render(v.messages, subject.Attribute, failure))
		}
	}

	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func hasRule(rules []Rule, name string) bool {
	for _, r := range rules {
		if r.Name() == name {
			return true
		}
	}
	return false
}
