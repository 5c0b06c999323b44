package validator

import (
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/stitch/pkg/domain"
	"github.com/aretw0/stitch/pkg/visibility"
)

// Subject is the value under validation together with its surroundings.
type Subject struct {
	Field     domain.Field
	Attribute string
	Value     any
	Present   bool
	Data      domain.Values
	// Numeric is set when the field declares a numeric or integer rule,
	// which makes size rules compare values instead of lengths.
	Numeric bool
}

// Rule defines the contract for one parsed rule descriptor.
type Rule interface {
	// Name returns the rule name as written in descriptors (e.g. "min").
	Name() string
	// Implicit rules run even when the value is empty.
	Implicit() bool
	// Validate returns a *Failure when the subject does not satisfy the rule.
	// Any other error aborts validation.
	Validate(s *Subject) error
}

// Factory builds a Rule from the parameters following the colon of a descriptor.
type Factory func(params []string) (Rule, error)

type customRule struct {
	name     string
	implicit bool
	validate func(s *Subject) error
}

func (r *customRule) Name() string              { return r.name }
func (r *customRule) Implicit() bool            { return r.implicit }
func (r *customRule) Validate(s *Subject) error { return r.validate(s) }

// Custom creates a rule from a function.
func Custom(name string, implicit bool, validate func(s *Subject) error) Rule {
	return &customRule{name: name, implicit: implicit, validate: validate}
}

func noParams(name string, implicit bool, validate func(s *Subject) error) Factory {
	return func(params []string) (Rule, error) {
		if len(params) > 0 {
			return nil, invalid(name, "takes no parameters")
		}
		return Custom(name, implicit, validate), nil
	}
}

var builtins = map[string]Factory{
	"required":    noParams("required", true, checkRequired),
	"accepted":    noParams("accepted", true, checkAccepted),
	"nullable":    noParams("nullable", false, func(*Subject) error { return nil }),
	"sometimes":   noParams("sometimes", false, func(*Subject) error { return nil }),
	"string":      noParams("string", false, checkString),
	"numeric":     noParams("numeric", false, checkNumeric),
	"integer":     noParams("integer", false, checkInteger),
	"boolean":     noParams("boolean", false, checkBoolean),
	"email":       noParams("email", false, checkEmail),
	"url":         noParams("url", false, checkURL),
	"date":        noParams("date", false, checkDate),
	"array":       noParams("array", false, checkArray),
	"min":         sizeRule("min"),
	"max":         sizeRule("max"),
	"between":     sizeRule("between"),
	"in":          membership("in", true),
	"not_in":      membership("not_in", false),
	"required_if": requiredIf,
}

func checkRequired(s *Subject) error {
	if isEmpty(s.Value) {
		return fail("required")
	}
	return nil
}

// checkAccepted passes for true, 1, "1", "yes", "on" and "true".
func checkAccepted(s *Subject) error {
	switch v := s.Value.(type) {
	case bool:
		if v {
			return nil
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "yes", "on", "true":
			return nil
		}
	default:
		if f, ok := visibility.Number(v); ok && f == 1 {
			return nil
		}
	}
	return fail("accepted")
}

func checkString(s *Subject) error {
	if _, ok := s.Value.(string); !ok {
		return fail("string")
	}
	return nil
}

func checkNumeric(s *Subject) error {
	if _, ok := visibility.Number(s.Value); !ok {
		return fail("numeric")
	}
	return nil
}

func checkInteger(s *Subject) error {
	switch v := s.Value.(type) {
	case string:
		if _, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return nil
		}
		return fail("integer")
	case bool:
		return fail("integer")
	}
	if f, ok := visibility.Number(s.Value); ok && f == float64(int64(f)) {
		return nil
	}
	return fail("integer")
}

func checkBoolean(s *Subject) error {
	switch v := s.Value.(type) {
	case bool:
		return nil
	case string:
		if v == "0" || v == "1" {
			return nil
		}
	default:
		if f, ok := visibility.Number(v); ok && (f == 0 || f == 1) {
			return nil
		}
	}
	return fail("boolean")
}

func checkEmail(s *Subject) error {
	str, ok := s.Value.(string)
	if !ok {
		return fail("email")
	}
	addr, err := mail.ParseAddress(str)
	if err != nil || addr.Address != strings.TrimSpace(str) {
		return fail("email")
	}
	return nil
}

func checkURL(s *Subject) error {
	str, ok := s.Value.(string)
	if !ok {
		return fail("url")
	}
	u, err := url.ParseRequestURI(str)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fail("url")
	}
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

func checkDate(s *Subject) error {
	str, ok := s.Value.(string)
	if !ok {
		return fail("date")
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, strings.TrimSpace(str)); err == nil {
			return nil
		}
	}
	return fail("date")
}

func checkArray(s *Subject) error {
	if _, ok := list(s.Value); ok {
		return nil
	}
	if reflect.ValueOf(s.Value).Kind() == reflect.Map {
		return nil
	}
	return fail("array")
}

// sizeRule implements min, max and between over numbers, string lengths or item counts.
func sizeRule(name string) Factory {
	return func(params []string) (Rule, error) {
		want := 1
		if name == "between" {
			want = 2
		}
		if len(params) != want {
			return nil, invalid(name, "expects %d parameter(s), got %d", want, len(params))
		}
		bounds := make([]float64, len(params))
		for i, p := range params {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, invalid(name, "parameter %q is not a number", p)
			}
			bounds[i] = f
		}

		return Custom(name, false, func(s *Subject) error {
			size, unit := measure(s)
			var ok bool
			switch name {
			case "min":
				ok = size >= bounds[0]
			case "max":
				ok = size <= bounds[0]
			default:
				ok = size >= bounds[0] && size <= bounds[1]
			}
			if ok {
				return nil
			}
			if name == "between" {
				return fail(name+"."+unit, "min", params[0], "max", params[1])
			}
			return fail(name+"."+unit, name, params[0])
		}), nil
	}
}

// measure returns the size of the subject and the unit used to report it.
func measure(s *Subject) (float64, string) {
	if s.Numeric {
		if f, ok := visibility.Number(s.Value); ok {
			return f, "numeric"
		}
	}
	if items, ok := list(s.Value); ok {
		return float64(len(items)), "array"
	}
	return float64(utf8.RuneCountInString(toString(s.Value))), "string"
}

func membership(name string, want bool) Factory {
	return func(params []string) (Rule, error) {
		if len(params) == 0 {
			return nil, invalid(name, "expects at least one value")
		}
		allowed := make(map[string]bool, len(params))
		for _, p := range params {
			allowed[p] = true
		}
		return Custom(name, false, func(s *Subject) error {
			values, ok := list(s.Value)
			if !ok {
				values = []any{s.Value}
			}
			for _, v := range values {
				if allowed[toString(v)] != want {
					return fail(name)
				}
			}
			return nil
		}), nil
	}
}

func requiredIf(params []string) (Rule, error) {
	if len(params) < 2 {
		return nil, invalid("required_if", "expects a field and at least one value")
	}
	other, values := params[0], params[1:]
	return Custom("required_if", true, func(s *Subject) error {
		actual, _ := visibility.Lookup(s.Data, other)
		for _, v := range values {
			if visibility.LooseEqual(actual, v) {
				if isEmpty(s.Value) {
					return fail("required_if", "other", attributeName(other), "value", toString(actual))
				}
				return nil
			}
		}
		return nil
	}), nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	if items, ok := list(v); ok {
		return len(items) == 0
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Len() == 0
}

func list(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func attributeName(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
