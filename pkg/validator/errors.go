package validator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownRule is returned when a descriptor names a rule that is not registered.
	ErrUnknownRule = errors.New("unknown validation rule")
	// ErrInvalidRule is returned when a descriptor has missing or malformed parameters.
	ErrInvalidRule = errors.New("invalid validation rule")
)

// Failure reports that a value did not satisfy a rule.
// Message is a key into the message templates (e.g. "min.string") and
// Params fill the template placeholders (":min", ":other", ...).
type Failure struct {
	Message string
	Params  map[string]string
}

func (f *Failure) Error() string {
	return "validation failed: " + f.Message
}

func fail(message string, params ...string) *Failure {
	f := &Failure{Message: message, Params: make(map[string]string, len(params)/2)}
	for i := 0; i+1 < len(params); i += 2 {
		f.Params[params[i]] = params[i+1]
	}
	return f
}

var defaultMessages = map[string]string{
	"required":        "The :attribute field is required.",
	"required_if":     "The :attribute field is required when :other is :value.",
	"string":          "The :attribute field must be a string.",
	"numeric":         "The :attribute field must be a number.",
	"integer":         "The :attribute field must be an integer.",
	"boolean":         "The :attribute field must be true or false.",
	"accepted":        "The :attribute field must be accepted.",
	"email":           "The :attribute field must be a valid email address.",
	"url":             "The :attribute field must be a valid URL.",
	"date":            "The :attribute field must be a valid date.",
	"array":           "The :attribute field must be an array.",
	"in":              "The selected :attribute is invalid.",
	"not_in":          "The selected :attribute is invalid.",
	"min.numeric":     "The :attribute field must be at least :min.",
	"min.string":      "The :attribute field must be at least :min characters.",
	"min.array":       "The :attribute field must have at least :min items.",
	"max.numeric":     "The :attribute field must not be greater than :max.",
	"max.string":      "The :attribute field must not be greater than :max characters.",
	"max.array":       "The :attribute field must not have more than :max items.",
	"between.numeric": "The :attribute field must be between :min and :max.",
	"between.string":  "The :attribute field must be between :min and :max characters.",
	"between.array":   "The :attribute field must have between :min and :max items.",
}

// render fills a message template. Unknown message keys fall back to the key itself.
func render(templates map[string]string, attribute string, f *Failure) string {
	tmpl, ok := templates[f.Message]
	if !ok {
		tmpl = f.Message
	}
	pairs := []string{":attribute", attribute}
	for k, v := range f.Params {
		pairs = append(pairs, ":"+k, v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func invalid(name, format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidRule, name, fmt.Sprintf(format, args...))
}
