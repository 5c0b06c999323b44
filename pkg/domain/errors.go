package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrWizardNotFound is returned when a wizard id is not known to the definition source.
var ErrWizardNotFound = errors.New("wizard not found")

// ErrStepNotFound is returned when a step key does not belong to the wizard.
var ErrStepNotFound = errors.New("step not found")

// ErrInvalidDefinition is returned when a wizard definition is structurally unsound.
var ErrInvalidDefinition = errors.New("invalid wizard definition")

// ConfigurationError reports a fatal problem with the wizard configuration
// (unknown wizard, unknown step, malformed step). Callers surface it as not-found.
type ConfigurationError struct {
	WizardID string
	StepKey  string
	Reason   string
	Err      error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration error")
	if e.WizardID != "" {
		fmt.Fprintf(&sb, " in wizard %q", e.WizardID)
	}
	if e.StepKey != "" {
		fmt.Fprintf(&sb, " at step %q", e.StepKey)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err denotes an unknown wizard or step.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWizardNotFound) || errors.Is(err, ErrStepNotFound)
}

// FieldErrors maps a field key to its ordered list of error messages.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (fe FieldErrors) Add(key, message string) {
	fe[key] = append(fe[key], message)
}

// Keys returns the failing field keys in sorted order.
func (fe FieldErrors) Keys() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// First returns the first message recorded for key, or "".
func (fe FieldErrors) First(key string) string {
	if msgs := fe[key]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ValidationError signals that a step submission failed validation.
// It is recoverable: the caller re-renders the same step with the errors.
type ValidationError struct {
	WizardID string
	StepKey  string
	Fields   FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q of wizard %q failed validation: %s",
		e.StepKey, e.WizardID, strings.Join(e.Fields.Keys(), ", "))
}
