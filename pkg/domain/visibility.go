package domain

import (
	"fmt"
	"strings"
)

// Logic selects how the conditions of a RuleGroup are combined.
type Logic string

const (
	// LogicAll requires every condition to hold (AND). It is the default.
	LogicAll Logic = "all"
	// LogicAny requires at least one condition to hold (OR).
	LogicAny Logic = "any"
)

// ParseLogic normalizes a logic keyword. The empty string maps to LogicAll.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "and":
		return LogicAll, nil
	case "any", "or":
		return LogicAny, nil
	default:
		return "", fmt.Errorf("unknown visibility logic %q (expected all|any)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Logic) UnmarshalText(text []byte) error {
	parsed, err := ParseLogic(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Operator is the closed set of comparison operators a Condition may use.
type Operator int

const (
	OpEquals Operator = iota + 1
	OpNotEquals
	OpGreater
	OpGreaterOrEqual
	OpLess
	OpLessOrEqual
	OpIn
	OpNotIn
	OpExists
	OpTruthy
	OpFalsy
)

var operatorNames = map[Operator]string{
	OpEquals:         "=",
	OpNotEquals:      "!=",
	OpGreater:        ">",
	OpGreaterOrEqual: ">=",
	OpLess:           "<",
	OpLessOrEqual:    "<=",
	OpIn:             "in",
	OpNotIn:          "not_in",
	OpExists:         "exists",
	OpTruthy:         "truthy",
	OpFalsy:          "falsy",
}

var operatorAliases = map[string]Operator{
	"=": OpEquals, "==": OpEquals, "eq": OpEquals, "equals": OpEquals,
	"!=": OpNotEquals, "<>": OpNotEquals, "ne": OpNotEquals, "not_equals": OpNotEquals,
	">": OpGreater, "gt": OpGreater,
	">=": OpGreaterOrEqual, "gte": OpGreaterOrEqual,
	"<": OpLess, "lt": OpLess,
	"<=": OpLessOrEqual, "lte": OpLessOrEqual,
	"in":     OpIn,
	"not_in": OpNotIn, "nin": OpNotIn, "not-in": OpNotIn,
	"exists": OpExists,
	"truthy": OpTruthy,
	"falsy":  OpFalsy,
}

// ParseOperator resolves one of the accepted operator spellings.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown condition operator %q", s)
	}
	return op, nil
}

// String returns the canonical spelling of the operator.
func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Valid reports whether o is a member of the closed operator set.
func (o Operator) Valid() bool {
	_, ok := operatorNames[o]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid operator %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Condition is one leaf of a visibility rule tree.
type Condition struct {
	// Path is a dotted lookup key into the context (e.g. "status" or "address.city").
	Path  string   `json:"path" yaml:"path" mapstructure:"path"`
	Op    Operator `json:"op" yaml:"op" mapstructure:"op"`
	Value any      `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// RuleGroup composes conditions under AND/OR semantics.
// An empty condition list is always satisfied.
type RuleGroup struct {
	Logic Logic       `json:"logic,omitempty" yaml:"logic,omitempty" mapstructure:"logic"`
	Rules []Condition `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// EffectiveLogic returns the group logic, defaulting to LogicAll.
func (g *RuleGroup) EffectiveLogic() Logic {
	if g.Logic == LogicAny {
		return LogicAny
	}
	return LogicAll
}

// Paths returns the context paths referenced by the group, in order.
func (g *RuleGroup) Paths() []string {
	paths := make([]string, 0, len(g.Rules))
	for _, c := range g.Rules {
		paths = append(paths, c.Path)
	}
	return paths
}
