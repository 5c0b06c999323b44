package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stitch/pkg/domain"
)

func TestParseOperator(t *testing.T) {
	tests := map[string]domain.Operator{
		"=": domain.OpEquals, "==": domain.OpEquals, "eq": domain.OpEquals,
		"!=": domain.OpNotEquals, "<>": domain.OpNotEquals,
		">": domain.OpGreater, "GTE": domain.OpGreaterOrEqual,
		"<": domain.OpLess, "lte": domain.OpLessOrEqual,
		"in": domain.OpIn, "not_in": domain.OpNotIn, "nin": domain.OpNotIn,
		" exists ": domain.OpExists, "truthy": domain.OpTruthy, "falsy": domain.OpFalsy,
	}
	for in, want := range tests {
		got, err := domain.ParseOperator(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseOperator("contains")
	assert.Error(t, err)
	assert.False(t, domain.Operator(0).Valid())
}

func TestCondition_JSON(t *testing.T) {
	var c domain.Condition
	require.NoError(t, json.Unmarshal([]byte(`{"path":"status","op":"not_in","value":["a"]}`), &c))
	assert.Equal(t, domain.OpNotIn, c.Op)
	assert.Equal(t, []any{"a"}, c.Value)

	out, err := json.Marshal(domain.Condition{Path: "age", Op: domain.OpGreaterOrEqual, Value: 18})
	require.NoError(t, err)
	assert.JSONEq(t, `{"path":"age","op":">=","value":18}`, string(out))

	err = json.Unmarshal([]byte(`{"path":"x","op":"~="}`), &c)
	assert.Error(t, err)
}

func TestParseLogic(t *testing.T) {
	for in, want := range map[string]domain.Logic{"": domain.LogicAll, "ALL": domain.LogicAll, "and": domain.LogicAll, "any": domain.LogicAny, "or": domain.LogicAny} {
		got, err := domain.ParseLogic(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseLogic("xor")
	assert.Error(t, err)

	assert.Equal(t, domain.LogicAll, (&domain.RuleGroup{}).EffectiveLogic())
}
