package visibility

import "github.com/aretw0/stitch/pkg/domain"

// Evaluate checks a single condition against ctx.
// A missing path is treated as nil by every operator except exists.
func Evaluate(ctx domain.Values, c domain.Condition) bool {
	actual, found := Lookup(ctx, c.Path)

	switch c.Op {
	case domain.OpEquals:
		return LooseEqual(actual, c.Value)
	case domain.OpNotEquals:
		return !LooseEqual(actual, c.Value)
	case domain.OpGreater:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp > 0
	case domain.OpGreaterOrEqual:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp >= 0
	case domain.OpLess:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp < 0
	case domain.OpLessOrEqual:
		cmp, ok := Compare(actual, c.Value)
		return ok && cmp <= 0
	case domain.OpIn:
		return contains(c.Value, actual)
	case domain.OpNotIn:
		return !contains(c.Value, actual)
	case domain.OpExists:
		return found
	case domain.OpTruthy:
		return Truthy(actual)
	case domain.OpFalsy:
		return !Truthy(actual)
	default:
		// Unreachable for definitions that passed registry checks.
		return false
	}
}

func contains(set, v any) bool {
	for _, member := range asSet(set) {
		if StrictEqual(member, v) {
			return true
		}
	}
	return false
}

// EvaluateGroup combines the group's conditions. An empty group is satisfied
// under both logics; otherwise "all" short-circuits on the first false and
// "any" on the first true.
func EvaluateGroup(ctx domain.Values, g domain.RuleGroup) bool {
	if len(g.Rules) == 0 {
		return true
	}
	if g.EffectiveLogic() == domain.LogicAny {
		for _, c := range g.Rules {
			if Evaluate(ctx, c) {
				return true
			}
		}
		return false
	}
	for _, c := range g.Rules {
		if !Evaluate(ctx, c) {
			return false
		}
	}
	return true
}

// Visible reports whether field is shown for ctx. Fields without a
// visibility group are always shown.
func Visible(ctx domain.Values, field domain.Field) bool {
	if field.Visibility == nil {
		return true
	}
	return EvaluateGroup(ctx, *field.Visibility)
}

// Filter returns the fields visible for ctx, preserving order.
func Filter(ctx domain.Values, fields []domain.Field) []domain.Field {
	out := make([]domain.Field, 0, len(fields))
	for _, f := range fields {
		if Visible(ctx, f) {
			out = append(out, f)
		}
	}
	return out
}
