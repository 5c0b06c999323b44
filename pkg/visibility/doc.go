// Package visibility decides which fields of a step are shown for a given context.
//
// A field's visibility is a RuleGroup of Conditions combined with "all" (AND) or
// "any" (OR) logic. Each Condition reads one dotted path from the context and
// compares it with a configured value using a closed set of operators.
//
// All loose comparisons go through the helpers in coerce.go (Number, LooseEqual,
// StrictEqual, Compare, Truthy) so that every operator agrees on what "equal",
// "numeric" and "truthy" mean.
//
// Evaluation is pure: the context is never modified and the same inputs always
// produce the same answer.
package visibility
